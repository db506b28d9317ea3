package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// ErrInvalidPath is matched by every ValidationError.
var ErrInvalidPath = errors.New("invalid path")

// Validation codes, in the order the checks run.
const (
	CodeYear             = 100
	CodeMonth            = 101
	CodeHour             = 102
	CodeManMadeNoise     = 103
	CodeNoFoF2Data       = 104
	CodeNoM3kF2Data      = 105
	CodeNoDudData        = 106
	CodeNoFamData        = 107
	CodeNoFoF2VarData    = 108
	CodeSSN              = 109
	CodeModulation       = 110
	CodeFrequency        = 111
	CodeBW               = 112
	CodeTXPower          = 113
	CodeSNRr             = 114
	CodeSIRr             = 115
	CodeF0               = 116
	CodeT0               = 117
	CodeA                = 118
	CodeTW               = 119
	CodeFW               = 120
	CodeTXLocation       = 121
	CodeRXLocation       = 122
	CodeRXAntennaPattern = 123
	CodeTXAntennaPattern = 124
	CodeSNRXXp           = 125
)

// ValidationError reports the first input that failed validation.
type ValidationError struct {
	Code  int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid path: %s: %s (code %d)", e.Field, e.Msg, e.Code)
}

// Is makes errors.Is(err, ErrInvalidPath) succeed.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidPath }

func invalid(code int, field, format string, args ...any) error {
	return &ValidationError{Code: code, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks the path inputs before any stage runs. Noise
// coefficients are the NoiseProvider's concern and are checked when the
// provider is consulted. It returns nil or a *ValidationError.
func (p *Path) Validate() error {
	switch {
	case p.Year < 1900 || p.Year > 2100:
		return invalid(CodeYear, "year", "%d outside 1900..2100", p.Year)
	case p.Month < 0 || p.Month > 11:
		return invalid(CodeMonth, "month", "%d outside 0..11", p.Month)
	case p.Hour < 0 || p.Hour > 23:
		return invalid(CodeHour, "hour", "%d outside 0..23", p.Hour)
	}

	if mm := p.Noise.ManMade; mm > 0 && !mm.IsCategory() && (mm > 6.0 && mm < 100.0 || mm > 200.0) {
		return invalid(CodeManMadeNoise, "manMadeNoise", "%v is neither a category nor 100..200 dBW", float64(mm))
	}

	switch {
	case p.Iono == nil:
		return invalid(CodeNoFoF2Data, "iono", "no foF2 or M(3000)F2 data")
	case p.Deciles == nil:
		return invalid(CodeNoFoF2VarData, "deciles", "no foF2 variability data")
	case p.SSN < 1 || p.SSN > 311:
		return invalid(CodeSSN, "ssn", "%d outside 1..311", p.SSN)
	case p.Modulation != model.Analog && p.Modulation != model.Digital:
		return invalid(CodeModulation, "modulation", "unknown modulation %d", int(p.Modulation))
	case p.Frequency < 1.0 || p.Frequency > 30.0:
		return invalid(CodeFrequency, "frequency", "%v MHz outside 1..30", p.Frequency)
	case p.BW < 0.005 || p.BW > 3e6:
		return invalid(CodeBW, "bw", "%v Hz outside 0.005..3e6", p.BW)
	case p.TXPower < -30.0 || p.TXPower > 60:
		return invalid(CodeTXPower, "txPower", "%v dB(1 kW) outside -30..60", p.TXPower)
	case p.SNRr < -30.0 || p.SNRr > 200:
		return invalid(CodeSNRr, "snrr", "%v dB outside -30..200", p.SNRr)
	case p.SIRr < -30.0 || p.SIRr > 200:
		return invalid(CodeSIRr, "sirr", "%v dB outside -30..200", p.SIRr)
	case p.F0 < 0.0 || p.F0 > 1000:
		return invalid(CodeF0, "f0", "%v outside 0..1000", p.F0)
	case p.T0 < 0.0 || p.T0 > 1000:
		return invalid(CodeT0, "t0", "%v outside 0..1000", p.T0)
	case p.A < 0.0 || p.A > 1000:
		return invalid(CodeA, "a", "%v outside 0..1000", p.A)
	case p.TW < 0.0 || p.TW > 50.0:
		return invalid(CodeTW, "tw", "%v outside 0..50", p.TW)
	case p.FW < 0.0 || p.FW > 1000:
		return invalid(CodeFW, "fw", "%v outside 0..1000", p.FW)
	case math.Abs(p.TX.Lat) > math.Pi/2.0 || math.Abs(p.TX.Lng) > math.Pi:
		return invalid(CodeTXLocation, "tx", "location out of range")
	case math.Abs(p.RX.Lat) > math.Pi/2.0 || math.Abs(p.RX.Lng) > math.Pi:
		return invalid(CodeRXLocation, "rx", "location out of range")
	case p.RXAntenna == nil || p.RXAntenna.Validate() != nil:
		return invalid(CodeRXAntennaPattern, "rxAntenna", "missing or incomplete pattern")
	case p.TXAntenna == nil || p.TXAntenna.Validate() != nil:
		return invalid(CodeTXAntennaPattern, "txAntenna", "missing or incomplete pattern")
	case p.SNRXXp < 1 || p.SNRXXp > 99:
		return invalid(CodeSNRXXp, "snrxxp", "%d outside 1..99", p.SNRXXp)
	}
	return nil
}
