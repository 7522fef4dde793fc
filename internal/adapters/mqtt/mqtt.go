// Package mqtt publishes card presence events to an MQTT broker
//
// Without a configured host the publisher is disabled and every call is a no-op,
// so the service runs the same with or without a broker.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"readnfc/internal/platform/config"
	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/logger"
	pstrings "readnfc/internal/platform/strings"
	"readnfc/internal/services/cardreader/domain"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Config holds broker and topic settings
type Config struct {
	Host        string
	Port        int
	ClientID    string
	TopicPrefix string
	CACert      string
	ClientCert  string
	ClientKey   string
	QoS         byte
	Retain      bool
	// PublishTimeout bounds the wait for a publish acknowledgement
	PublishTimeout time.Duration
}

// FromConfig reads settings using MQTT_ prefix
func FromConfig(cfg config.Conf) Config {
	m := cfg.Prefix("MQTT_")
	return Config{
		Host:           m.MayString("HOST", ""),
		Port:           m.MayInt("PORT", 0),
		ClientID:       m.MayString("CLIENT_ID", "readnfc"),
		TopicPrefix:    m.MayString("TOPIC_PREFIX", "readnfc"),
		CACert:         m.MayString("CA_CERT", ""),
		ClientCert:     m.MayString("CLIENT_CERT", ""),
		ClientKey:      m.MayString("CLIENT_KEY", ""),
		QoS:            byte(m.MayInt("QOS", 0)),
		Retain:         m.MayBool("RETAIN", false),
		PublishTimeout: m.MayDuration("PUBLISH_TIMEOUT", 2*time.Second),
	}
}

// client is the part of paho.Client the publisher uses
type client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	IsConnectionOpen() bool
}

// Publisher implements domain.EventSink over MQTT
type Publisher struct {
	c       client
	cfg     Config
	enabled bool
	log     logger.Logger
}

var _ domain.EventSink = (*Publisher)(nil)

// New builds a publisher; it does not connect
func New(cfg Config, log logger.Logger) (*Publisher, error) {
	log = log.With().Str("component", "mqtt").Logger()
	p := &Publisher{cfg: cfg, log: log}
	if cfg.Host == "" {
		log.Info().Msg("mqtt disabled (no host configured)")
		return p, nil
	}
	if cfg.QoS > 2 {
		return nil, perr.InvalidArgf("mqtt qos %d out of range 0..2", cfg.QoS)
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
		p.cfg.PublishTimeout = cfg.PublishTimeout
	}

	var tlsConfig *tls.Config
	scheme := "tcp"
	if cfg.CACert != "" || cfg.ClientCert != "" {
		scheme = "ssl"
		tc, err := buildTLSConfig(cfg)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "mqtt tls config")
		}
		tlsConfig = tc
		if cfg.Port == 0 {
			cfg.Port = 8883
		}
	} else if cfg.Port == 0 {
		cfg.Port = 1883
	}
	broker := fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		}).
		SetOnConnectHandler(func(paho.Client) {
			log.Info().Str("broker", broker).Msg("mqtt connected")
		})
	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	paho.ERROR = pahoLog{ev: log.Error}
	paho.CRITICAL = pahoLog{ev: log.Error}
	paho.WARN = pahoLog{ev: log.Warn}

	p.c = paho.NewClient(opts)
	p.enabled = true
	return p, nil
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tc := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CACert != "" {
		pem, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tc.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

// Enabled reports whether a broker is configured
func (p *Publisher) Enabled() bool { return p.enabled }

// Connect waits for the first broker connection until ctx ends
// the client keeps retrying in the background either way
func (p *Publisher) Connect(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	return wait(ctx, p.c.Connect(), "mqtt connect")
}

// Close disconnects, letting in-flight work finish for up to 250ms
func (p *Publisher) Close() {
	if !p.enabled {
		return
	}
	p.c.Disconnect(250)
}

// Ping fails when a broker is configured but not connected
func (p *Publisher) Ping(_ context.Context) error {
	if p.enabled && !p.c.IsConnectionOpen() {
		return perr.Unavailablef("mqtt not connected")
	}
	return nil
}

// Publish sends ev to <prefix>/<reader>/presence
func (p *Publisher) Publish(ctx context.Context, ev domain.PresenceEvent) error {
	if !p.enabled {
		return nil
	}
	body, err := Payload(ev)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode presence event")
	}
	topic := Topic(p.cfg.TopicPrefix, ev.Reader)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
	defer cancel()
	if err := wait(ctx, p.c.Publish(topic, p.cfg.QoS, p.cfg.Retain, body), "mqtt publish"); err != nil {
		return err
	}
	p.log.Debug().Str("topic", topic).Str("event", ev.Kind.String()).Msg("presence event published")
	return nil
}

func wait(ctx context.Context, t paho.Token, op string) error {
	select {
	case <-t.Done():
		if err := t.Error(); err != nil {
			return perr.Wrap(err, perr.ErrorCodeUnavailable, op)
		}
		return nil
	case <-ctx.Done():
		return perr.Wrap(ctx.Err(), perr.ErrorCodeTimeout, op)
	}
}

// Message is the JSON body of a presence event
type Message struct {
	ID     string    `json:"id"`
	Event  string    `json:"event"`
	Reader string    `json:"reader"`
	UID    string    `json:"uid,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Payload encodes ev as a Message
func Payload(ev domain.PresenceEvent) ([]byte, error) {
	m := Message{
		ID:     ev.ID.String(),
		Event:  ev.Kind.String(),
		Reader: string(ev.Reader),
		UID:    ev.UID,
		At:     ev.At,
	}
	if ev.Err != nil {
		m.Error = ev.Err.Error()
	}
	return json.Marshal(m)
}

// Topic builds <prefix>/<reader>/presence with the reader name made safe for one topic level
func Topic(prefix string, reader domain.Reader) string {
	seg := pstrings.ReplaceAny(strings.TrimSpace(string(reader)), " /+#", '_')
	if seg == "" {
		seg = "_"
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return seg + "/presence"
	}
	return prefix + "/" + seg + "/presence"
}

// pahoLog routes paho's internal logging into zerolog
type pahoLog struct{ ev func() *zerolog.Event }

func (l pahoLog) Println(v ...interface{}) { l.ev().Msg(strings.TrimSpace(fmt.Sprintln(v...))) }

func (l pahoLog) Printf(format string, v ...interface{}) { l.ev().Msgf(format, v...) }
