// Package ingest feeds live MQTT readings into the sensor store.
//
// Sensors publish {"gas", "fire", "time"?} to <prefix>/<sensor_id>/readings.
// Each message is stored through sensor.Store.Ingest, so live readings take
// the same transactional path as HTTP and batch ingestion. Bad messages are
// logged and counted; they never stop the subscription.
package ingest
