// Package influxdb records sensor validation diagnostics in InfluxDB.
//
// Each create or update routed through the sensor manager produces one
// sensor_validation point tagged with the sensor type, the operation and the
// outcome. Sensor readings themselves are not stored here.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	switch {
//	case errors.Is(err, influxdb.ErrDisabled):
//	    // run without diagnostics
//	case err != nil:
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteValidation(influxdb.ValidationEvent{TypeID: "ZLLSwitch", Operation: "create", Result: "accepted"})
//
// Writes are non-blocking and batched (batch_size, flush_interval); batch
// failures arrive asynchronously through SetOnError.
package influxdb
