package model

// NoiseParams are the noise components at the receiver in dB above kT0b,
// with upper (Du) and lower (Dl) decile deviations for each source.
type NoiseParams struct {
	ManMade ManMade `json:"manMade" msgpack:"manMade"`

	FaA float64 `json:"faA" msgpack:"faA"` // atmospheric
	DuA float64 `json:"duA" msgpack:"duA"`
	DlA float64 `json:"dlA" msgpack:"dlA"`

	FaM float64 `json:"faM" msgpack:"faM"` // man-made
	DuM float64 `json:"duM" msgpack:"duM"`
	DlM float64 `json:"dlM" msgpack:"dlM"`

	FaG float64 `json:"faG" msgpack:"faG"` // galactic
	DuG float64 `json:"duG" msgpack:"duG"`
	DlG float64 `json:"dlG" msgpack:"dlG"`

	FamT float64 `json:"famT" msgpack:"famT"` // total
	DuT  float64 `json:"duT" msgpack:"duT"`
	DlT  float64 `json:"dlT" msgpack:"dlT"`
}
