package geo

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/mqtt"

	"github.com/google/uuid"
)

// fixMessage is the wire payload a student device publishes per fix.
type fixMessage struct {
	Lat   *float64  `json:"lat"`
	Lng   *float64  `json:"lng"`
	Ts    time.Time `json:"ts"`
	Error string    `json:"error,omitempty"`
}

// controlMessage asks the device for a given acquisition mode.
type controlMessage struct {
	HighAccuracy bool `json:"high_accuracy"`
}

// MQTTSensor adapts one student's location stream on the MQTT broker to the
// Sensor interface. The device publishes fixes to <prefix>/<user_id>; sensor
// failures on the device side arrive as error payloads on the same topic.
// One watch at a time per sensor.
type MQTTSensor struct {
	client *mqtt.Client
	topic  string
	log    *logger.Logger

	mu      sync.Mutex
	handle  WatchHandle
	timer   *time.Timer
	onFix   FixFunc
	onError ErrorFunc
	opts    WatchOptions
}

func NewMQTTSensor(client *mqtt.Client, topicPrefix, userID string, log *logger.Logger) *MQTTSensor {
	return &MQTTSensor{
		client: client,
		topic:  fmt.Sprintf("%s/%s", topicPrefix, userID),
		log:    log,
	}
}

func (s *MQTTSensor) Watch(onFix FixFunc, onError ErrorFunc, opts WatchOptions) (WatchHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != "" {
		return "", fmt.Errorf("watch already active on %s", s.topic)
	}

	if err := s.client.Subscribe(s.topic, s.handleMessage); err != nil {
		return "", fmt.Errorf("failed to watch location topic: %w", err)
	}

	// Tell the device which acquisition mode we want.
	ctrl, _ := json.Marshal(controlMessage{HighAccuracy: opts.HighAccuracy})
	if err := s.client.Publish(s.topic+"/ctrl", ctrl); err != nil {
		s.log.Warn("Failed to publish acquisition mode for %s: %v", s.topic, err)
	}

	s.handle = WatchHandle(uuid.NewString())
	s.onFix = onFix
	s.onError = onError
	s.opts = opts
	s.armTimerLocked()

	return s.handle, nil
}

func (s *MQTTSensor) ClearWatch(handle WatchHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle == "" || handle != s.handle {
		return
	}

	if err := s.client.Unsubscribe(s.topic); err != nil {
		s.log.Warn("Failed to unsubscribe from %s: %v", s.topic, err)
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.handle = ""
	s.onFix = nil
	s.onError = nil
}

func (s *MQTTSensor) handleMessage(topic string, payload []byte) error {
	var msg fixMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("malformed fix payload on %s: %w", topic, err)
	}

	s.mu.Lock()
	if s.handle == "" {
		s.mu.Unlock()
		return nil
	}
	onFix := s.onFix
	onError := s.onError
	opts := s.opts
	s.mu.Unlock()

	if msg.Error != "" {
		s.emitError(onError, deviceError(msg.Error))
		return nil
	}

	if msg.Lat == nil || msg.Lng == nil {
		s.emitError(onError, &models.SensorError{
			Code:    models.SensorPositionUnavailable,
			Message: "fix payload missing coordinates",
		})
		return nil
	}

	// maxAge = 0 means no cached fix reuse: anything measurably stale is
	// dropped without ending the watch.
	if !msg.Ts.IsZero() && time.Since(msg.Ts) > opts.MaxAge+maxClockSkew {
		s.log.Debug("Dropping stale fix on %s (age %v)", topic, time.Since(msg.Ts))
		return nil
	}

	s.mu.Lock()
	if s.handle != "" {
		s.armTimerLocked()
	}
	s.mu.Unlock()

	onFix(models.LocationFix{Lat: *msg.Lat, Lng: *msg.Lng, Timestamp: msg.Ts})
	return nil
}

// armTimerLocked (re)starts the per-fix acquisition deadline. The timeout
// error repeats per missed window, matching continuous-watch retry
// semantics. Caller holds s.mu.
func (s *MQTTSensor) armTimerLocked() {
	if s.opts.Timeout <= 0 {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Timeout, s.onTimeout)
}

func (s *MQTTSensor) onTimeout() {
	s.mu.Lock()
	if s.handle == "" {
		s.mu.Unlock()
		return
	}
	onError := s.onError
	s.armTimerLocked()
	s.mu.Unlock()

	s.emitError(onError, &models.SensorError{
		Code:    models.SensorTimeout,
		Message: "no fix received within the acquisition timeout",
	})
}

func (s *MQTTSensor) emitError(onError ErrorFunc, serr *models.SensorError) {
	if onError != nil {
		onError(serr)
	}
}

func deviceError(code string) *models.SensorError {
	switch code {
	case models.SensorPermissionDenied:
		return &models.SensorError{Code: code, Message: "device denied location access"}
	case models.SensorPositionUnavailable:
		return &models.SensorError{Code: code, Message: "device could not determine position"}
	default:
		return &models.SensorError{Code: models.SensorPositionUnavailable, Message: code}
	}
}

const maxClockSkew = 2 * time.Second
