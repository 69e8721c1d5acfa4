// Package influxdb mirrors sensor readings into InfluxDB v2.
//
// The relational store stays the source of truth for the HTTP API; the
// mirror exists for dashboards and long-range analysis. Each committed
// reading becomes one point:
//
//	sensor_readings,sensor_id=<id> gas=<float>,fire=<int>i <time>
//
// Writes are batched (batch_size points or every flush_interval seconds)
// and never block ingestion.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // mirror off
//	}
//	defer client.Close()
//
//	client.WriteReading("kitchen_01", 0.42, 0, ts)
package influxdb
