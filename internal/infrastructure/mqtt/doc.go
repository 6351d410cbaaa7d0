// Package mqtt wraps the Eclipse Paho client for the sensor service.
//
// Bridges publish raw sensor payloads under graylogic/sensor/...; the ingest
// package subscribes through this client and publishes diagnostics and
// normalized records back. Topic layout is documented on Topics.
//
// The client:
//   - reconnects automatically with the configured backoff
//   - restores tracked subscriptions after each reconnect
//   - publishes a retained online status and registers an offline Last Will
//   - recovers panics in message handlers
//
// Usage:
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetLogger(logger.Component("mqtt"))
//
// Broker-backed tests carry the integration build tag and expect a broker on
// 127.0.0.1:1883.
package mqtt
