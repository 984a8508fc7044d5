package publish

// DeviceClassNone is the sentinel device class meaning "generic sensor":
// the dev_cla key is omitted from the discovery document entirely, which
// Home Assistant interprets as a sensor with no device class.
const DeviceClassNone = "None"

// DeviceDescriptor describes one logical sensor for broker-based
// discovery. All fields are immutable once constructed; descriptors are
// built fresh per publish call and never retained.
type DeviceDescriptor struct {
	// DeviceClass categorises the sensor (e.g. "temperature",
	// "humidity", "moisture"). DeviceClassNone omits the field.
	DeviceClass string

	// ExpiresAfter is how long, in seconds, consumers should consider the
	// last state fresh before marking the sensor unavailable.
	ExpiresAfter uint

	// Name is the human-readable sensor name.
	Name string

	// StateTopic is the channel the sensor's telemetry appears on.
	StateTopic string

	// UniqueID identifies the sensor across restarts.
	UniqueID string

	// UnitOfMeasurement labels the value (e.g. "%", "°C", "lx").
	UnitOfMeasurement string

	// ValueTemplate extracts this sensor's value from the telemetry
	// document (e.g. "{{ value_json.smst1 }}").
	ValueTemplate string

	// ConfigTopic is the channel the discovery document is retained on.
	ConfigTopic string
}

// document builds the canonical discovery document. Key order is fixed:
// dev_cla (when present), exp_aft, name, stat_t, uniq_id, unit_of_meas,
// val_tpl. All fields except dev_cla are always emitted, even when empty.
func (d DeviceDescriptor) document() *Document {
	doc := NewDocument()
	if d.DeviceClass != DeviceClassNone {
		doc.Set("dev_cla", d.DeviceClass)
	}
	doc.Set("exp_aft", d.ExpiresAfter)
	doc.Set("name", d.Name)
	doc.Set("stat_t", d.StateTopic)
	doc.Set("uniq_id", d.UniqueID)
	doc.Set("unit_of_meas", d.UnitOfMeasurement)
	doc.Set("val_tpl", d.ValueTemplate)
	return doc
}
