package ingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Config"
	"gitlab.com/floodguard1/fg.sensor_server/src/production/FG.IngestorService/client"
	logger "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Logger"
	fgmodels "gitlab.com/floodguard1/fg.sensor_server/src/production/FG.Models"
)

// Ingestor bridges MQTT sensor topics to the Sensor API Service. Devices
// that cannot reach the HTTP endpoint directly publish their readings as
// JSON payloads instead; the ingestor forwards them to POST /data.
type Ingestor struct {
	cfg        *config.IngestorConfig
	apiClient  *client.APIClient
	mqttClient mqtt.Client
	msgCh      chan fgmodels.SensorReading
	wg         sync.WaitGroup
	logger     *logger.Logger
}

// New creates a new ingestor
func New(cfg *config.IngestorConfig, apiClient *client.APIClient, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		apiClient: apiClient,
		msgCh:     make(chan fgmodels.SensorReading, 4096),
		logger:    logger,
	}
}

// Start connects to the broker, subscribes to the sensor topic and starts
// the forwarding worker.
func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.cfg.GetBrokerURL()).
		SetClientID(i.cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.MQTT.KeepAlive).
		SetPingTimeout(i.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(i.cfg.MQTT.BrokerUser)
		opts.SetPassword(i.cfg.MQTT.BrokerPass)
	}

	if i.cfg.MQTT.UseTLS {
		tlsCfg, err := tlsConfig(i.cfg.MQTT.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.ErrorWithError(err, "MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.cfg.MQTT.Topic
		if i.cfg.MQTT.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", i.cfg.MQTT.SharedGroup, i.cfg.MQTT.Topic)
		}
		i.logger.WithField("topic", topic).Info("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.WithField("topic", topic).ErrorWithError(token.Error(), "Failed to subscribe to MQTT topic")
		}
	}

	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.forwardWorker(ctx)
	}()

	return nil
}

// Stop disconnects from the broker and drains the forwarding worker
func (i *Ingestor) Stop() {
	if i.mqttClient != nil && i.mqttClient.IsConnected() {
		i.mqttClient.Disconnect(500)
	}
	close(i.msgCh)
	i.wg.Wait()
}

// IsConnected reports whether the MQTT client is connected
func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	i.logger.Logger.Debug().Str("topic", m.Topic()).Msg("Received MQTT message")

	var reading fgmodels.SensorReading
	if err := json.Unmarshal(m.Payload(), &reading); err != nil {
		i.logger.WithField("topic", m.Topic()).ErrorWithError(err, "Dropping undecodable sensor payload")
		return
	}

	// Reject obviously bad readings here instead of bouncing them off the
	// API service.
	if !fgmodels.IsValidDeviceID(reading.DeviceID) {
		i.logger.WithField("topic", m.Topic()).Warn("Dropping reading with invalid device ID")
		return
	}

	select {
	case i.msgCh <- reading:
	default:
		i.logger.Warn("Forwarding queue full, dropping reading")
	}
}

func (i *Ingestor) forwardWorker(ctx context.Context) {
	for reading := range i.msgCh {
		if err := i.apiClient.SubmitReading(ctx, reading); err != nil {
			i.logger.WithField("device_id", reading.DeviceID).ErrorWithError(err, "Failed to forward reading")
		}
	}
}

func tlsConfig(caCertPath string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caCertPath == "" {
		return cfg, nil
	}

	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate from %s", caCertPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
