package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rallypoint-io/rallypoint-core/internal/auth"
	"github.com/rallypoint-io/rallypoint-core/internal/device"
	"github.com/rallypoint-io/rallypoint-core/internal/infrastructure/mqtt"
)

// defaultHandleTimeout bounds the work done for a single report. MQTT
// handlers carry no caller context, so each message gets its own.
const defaultHandleTimeout = 5 * time.Second

// Subscriber is the slice of the MQTT client the ingestor needs.
type Subscriber interface {
	Subscribe(topic string, handler mqtt.MessageHandler) error
}

// TokenVerifier validates a bearer token and returns the identity it
// carries. Satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.User, *device.Device, error)
}

// LocationUpdater applies a position to the caller's device. Satisfied
// by *device.Service.
type LocationUpdater interface {
	UpdateLocation(ctx context.Context, ident device.Identity, lat, lon float64) (*device.Device, error)
}

// Trail appends accepted positions to the time-series history.
// Satisfied by *influxdb.Client. Optional.
type Trail interface {
	WriteLocationPoint(deviceID, userID string, lat, lon float64)
}

// Broadcaster fans accepted positions out to connected clients.
// Satisfied by the WebSocket hub. Optional.
type Broadcaster interface {
	Broadcast(message []byte)
}

// LocationReport is the payload devices publish on their location topic.
type LocationReport struct {
	Token     string  `json:"token"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// LocationEvent is the message broadcast to WebSocket clients after a
// report is accepted.
type LocationEvent struct {
	Type      string  `json:"type"`
	DeviceID  string  `json:"device_id"`
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Timestamp string  `json:"timestamp"`
}

// IngestorOptions holds the collaborators for NewIngestor.
type IngestorOptions struct {
	Subscriber Subscriber
	Verifier   TokenVerifier
	Devices    LocationUpdater

	// Trail is optional; nil disables history writes.
	Trail Trail

	// Broadcaster is optional; nil disables fan-out.
	Broadcaster Broadcaster

	Logger *slog.Logger

	// HandleTimeout bounds per-message work. Zero means the default.
	HandleTimeout time.Duration
}

// Ingestor consumes location reports from the broker and applies them.
type Ingestor struct {
	subscriber  Subscriber
	verifier    TokenVerifier
	devices     LocationUpdater
	trail       Trail
	broadcaster Broadcaster
	logger      *slog.Logger
	timeout     time.Duration
}

// NewIngestor creates an Ingestor. Call Start to begin consuming.
func NewIngestor(opts IngestorOptions) (*Ingestor, error) {
	if opts.Subscriber == nil {
		return nil, fmt.Errorf("telemetry: subscriber is required")
	}
	if opts.Verifier == nil {
		return nil, fmt.Errorf("telemetry: verifier is required")
	}
	if opts.Devices == nil {
		return nil, fmt.Errorf("telemetry: device service is required")
	}

	timeout := opts.HandleTimeout
	if timeout <= 0 {
		timeout = defaultHandleTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Ingestor{
		subscriber:  opts.Subscriber,
		verifier:    opts.Verifier,
		devices:     opts.Devices,
		trail:       opts.Trail,
		broadcaster: opts.Broadcaster,
		logger:      logger,
		timeout:     timeout,
	}, nil
}

// Start subscribes to the location wildcard topic. The subscription is
// replayed by the MQTT client on reconnect, so Start is called once.
func (i *Ingestor) Start() error {
	topic := mqtt.DeviceLocationWildcard()
	if err := i.subscriber.Subscribe(topic, i.handleLocation); err != nil {
		return fmt.Errorf("subscribe to locations: %w", err)
	}

	i.logger.Info("location ingest started", slog.String("topic", topic))
	return nil
}

// handleLocation processes one report. Returned errors are logged by
// the MQTT client; the broker is never nacked.
func (i *Ingestor) handleLocation(topic string, payload []byte) error {
	topicUUID, err := mqtt.ParseDeviceLocationTopic(topic)
	if err != nil {
		return err
	}

	var report LocationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return fmt.Errorf("parse location report: %w", err)
	}
	if report.Token == "" {
		return fmt.Errorf("location report without token on %s", topic)
	}
	if report.Latitude < -90 || report.Latitude > 90 ||
		report.Longitude < -180 || report.Longitude > 180 {
		return fmt.Errorf("location report out of range: lat=%f lon=%f",
			report.Latitude, report.Longitude)
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	user, dev, err := i.verifier.Verify(ctx, report.Token)
	if err != nil {
		return fmt.Errorf("location report rejected: %w", err)
	}

	// The token is bound to one device. A report published on another
	// device's topic is either a client bug or a spoof attempt.
	if dev.UUID != topicUUID {
		return fmt.Errorf("location report device mismatch: token=%s topic=%s",
			dev.UUID, topicUUID)
	}

	rc := auth.NewRequestContext()
	rc.SetUser(user)
	rc.SetDevice(dev)

	updated, err := i.devices.UpdateLocation(ctx, rc, report.Latitude, report.Longitude)
	if err != nil {
		return fmt.Errorf("apply location: %w", err)
	}

	if i.trail != nil {
		i.trail.WriteLocationPoint(updated.ID, user.ID, report.Latitude, report.Longitude)
	}

	if i.broadcaster != nil {
		i.broadcast(updated, user.ID, report.Latitude, report.Longitude)
	}

	i.logger.Debug("location applied",
		slog.String("device_id", updated.ID),
		slog.String("user_id", user.ID))

	return nil
}

func (i *Ingestor) broadcast(dev *device.Device, userID string, lat, lon float64) {
	event := LocationEvent{
		Type:      "device_location",
		DeviceID:  dev.ID,
		UserID:    userID,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		i.logger.Error("marshal location event", slog.String("error", err.Error()))
		return
	}

	i.broadcaster.Broadcast(payload)
}
