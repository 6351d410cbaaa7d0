// Package ingest connects MQTT to the sensor manager.
//
// Bridges publish raw JSON objects; the Handler validates them through the
// manager and answers on the same sensor hierarchy:
//
//	bridge ── graylogic/sensor/register ─────────▶ Create
//	bridge ── graylogic/sensor/{id}/state ───────▶ UpdateState
//	bridge ── graylogic/sensor/{id}/config ──────▶ UpdateConfig
//
//	accepted ─▶ graylogic/sensor/{id}/normalized  (retained)
//	rejected ─▶ graylogic/sensor/{id}/error       (Diagnostic)
//
// Payloads over 64 KiB or that are not JSON objects are rejected before
// they reach the manager.
package ingest
