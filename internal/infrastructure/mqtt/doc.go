// Package mqtt wraps paho.mqtt.golang for the gridstat service bridge.
//
// It provides connection management with automatic reconnection,
// subscription tracking with restoration after reconnect, Last Will
// and Testament for offline detection, and topic builders for the
// gridstat topic hierarchy:
//
//	gridstat/service/{domain}/{service}   service invocation requests
//	gridstat/result/{domain}/{service}    service invocation results
//	gridstat/system/status                online/offline status (retained)
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil { ... }
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.AllServiceRequests(), 1, handler)
//
// Thread Safety: All methods are safe for concurrent use.
package mqtt
