package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// norm holds the standard normal deviate for 50..99 percent in 1 percent
// steps; norm[40] is the 90 percent value that decile deviations scale by.
var norm = [50]float64{
	0.0000000000, 0.0250689082, 0.0501535835, 0.075269862, 0.1004337206,
	0.1256613469, 0.1509692155, 0.1763741647, 0.201893479, 0.2275449764,
	0.2533471029, 0.2793190341, 0.3054807878, 0.331853346, 0.3584587930,
	0.3853204663, 0.4124631294, 0.4399131658, 0.467698799, 0.4958503478,
	0.5244005133, 0.5533847202, 0.5828415079, 0.612812991, 0.6433454057,
	0.6744897502, 0.7063025626, 0.7388468486, 0.772193213, 0.8064212461,
	0.8416212327, 0.8778962945, 0.9153650877, 0.954165253, 0.9944578841,
	1.036433391, 1.080319342, 1.12639113, 1.174986792, 1.226528119,
	1.281551564, 1.340755033, 1.405071561, 1.47579103, 1.554773595,
	1.644853625, 1.750686073, 1.880793606, 2.053748909, 2.326347874,
}

// Day-to-day signal decile deviations, [high latitude][f/BMUF bracket].
var (
	signalLowerDecile = [2][10]float64{
		{8.0, 12.0, 13.0, 10.0, 8.0, 8.0, 8.0, 7.0, 6.0, 5.0},
		{11.0, 16.0, 17.0, 13.0, 11.0, 11.0, 11.0, 9.0, 8.0, 7.0},
	}
	signalUpperDecile = [2][10]float64{
		{6.0, 8.0, 12.0, 13.0, 12.0, 9.0, 9.0, 8.0, 7.0, 7.0},
		{9.0, 11.0, 12.0, 13.0, 12.0, 9.0, 9.0, 8.0, 7.0, 7.0},
	}
	fBMUFBrackets = [9]float64{0.8, 1.0, 1.2, 1.4, 1.6, 1.8, 2.0, 3.0, 4.0}
)

// Hour-to-hour decile deviations for signal and interference, dB.
const (
	hourUpperDecile = 5.0
	hourLowerDecile = 8.0
)

// CircuitReliability derives SNR, its deciles and the basic circuit
// reliability, then for digital systems the RSN/RT/RF probabilities, the
// multimode interference reliability and the overall reliability with and
// without equatorial scattering. A digital path without interfering modes
// has zero MIR and OCR and stops there.
//
// Reads: Modulation, Pr, Noise, BW, Distance, CP[], Frequency, BMUF, SNRr,
// SIRr, T0, F0, A, TW, FW, E[], F2[], Grw, SSN, Month, SNRXXp.
// Writes: SNR, DuSN, DlSN, BCR, RSN, RT, RF, SIR, DuSI, DlSI, MIR, OCR,
// OCRs, ProbOcc, SNRXX, E[].Tau, F2[].Tau.
func CircuitReliability(p *Path) {
	np := p.Noise

	S := p.Pr
	var sig signalModes
	if p.Modulation == model.Digital {
		S, sig = DigitalModulationSignalAndInterferers(p)
	}

	x := dbSum(np.FaA, np.FaM, np.FaG)
	p.SNR = S - 10.0*math.Log10(x) - 10.0*math.Log10(p.BW) + 204.0

	hl := 0
	if p.Distance > 2000.0 && highGeomagneticLatitude(&p.CP[MP], &p.CP[T1k], &p.CP[R1k]) {
		hl = 1
	}
	bracket := fBMUFBracket(p.Frequency / p.BMUF)
	dlSd := signalLowerDecile[hl][bracket]
	duSd := signalUpperDecile[hl][bracket]

	y := dbSum(np.FaA-np.DlA, np.FaM-np.DlM, np.FaG-np.DlG)
	p.DuSN = math.Sqrt(math.Pow(10.0*math.Log10(x/y), 2) + duSd*duSd + hourUpperDecile*hourUpperDecile)
	y = dbSum(np.FaA+np.DuA, np.FaM+np.DuM, np.FaG+np.DuG)
	p.DlSN = math.Sqrt(math.Pow(10.0*math.Log10(y/x), 2) + dlSd*dlSd + hourLowerDecile*hourLowerDecile)

	p.BCR = reliability(p.SNR, p.SNRr, p.DuSN, p.DlSN)

	if p.Modulation == model.Digital && p.T0 != 0.0 && p.F0 != 0.0 {
		digitalReliability(p)
	}

	if p.Modulation == model.Digital && p.Distance <= 9000.0 {
		var isum, isumu, isuml float64
		for _, idx := range sig.interferers {
			prw := p.Mode(idx).Prw
			isum += math.Pow(10.0, (prw-p.A)/10.0)
			isumu += math.Pow(10.0, (prw-p.A+hourUpperDecile)/10.0)
			isuml += math.Pow(10.0, (prw-p.A-hourLowerDecile)/10.0)
		}
		if isum == 0.0 {
			p.DuSI = hourUpperDecile
			p.DlSI = hourLowerDecile
			p.MIR = 0.0
			p.OCR = p.BCR * p.MIR / 100.0
			return
		}
		p.SIR = S - 10.0*math.Log10(isum)
		p.DuSI = math.Sqrt(hourUpperDecile*hourUpperDecile + math.Pow(10.0*math.Log10(isum/isuml), 2))
		p.DlSI = math.Sqrt(hourLowerDecile*hourLowerDecile + math.Pow(10.0*math.Log10(isumu/isum), 2))
		p.MIR = reliability(p.SIR, p.SIRr, p.DuSI, p.DlSI)
		p.OCR = p.BCR * p.MIR / 100.0
		EquatorialScattering(p, sig.signal)
	}

	p.SNRXX = SNRAtReliability(p.SNR, p.DuSN, p.DlSN, p.SNRXXp)
}

// SNRAtReliability returns the SNR exceeded for pct percent of the time
// given the median and its upper and lower decile deviations.
func SNRAtReliability(snr, du, dl float64, pct int) float64 {
	if pct < 50 {
		return snr + du*norm[50-pct]/norm[40]
	}
	return snr - dl*norm[pct-50]/norm[40]
}

// reliability is the saturating estimate, in percent, that a median value
// with the given upper and lower decile deviations meets required.
func reliability(value, required, du, dl float64) float64 {
	if value >= required {
		return math.Min(130.0-80.0/(1.0+(value-required)/dl), 100.0)
	}
	return math.Max(80.0/(1.0+(required-value)/du)-30.0, 0.0)
}

func dbSum(levels ...float64) float64 {
	var s float64
	for _, l := range levels {
		s += math.Pow(10.0, l/10.0)
	}
	return s
}

// highGeomagneticLatitude reports whether any of cps lies at or above 60
// degrees geomagnetic latitude.
func highGeomagneticLatitude(cps ...*model.ControlPoint) bool {
	for _, cp := range cps {
		if GeomagneticCoords(cp.L).Lat >= 60.0*D2R {
			return true
		}
	}
	return false
}

// fBMUFBracket returns the signal decile column for the ratio of operating
// frequency to basic MUF.
func fBMUFBracket(ratio float64) int {
	for i, upper := range fBMUFBrackets {
		if ratio <= upper {
			return i
		}
	}
	return len(fBMUFBrackets)
}

// digitalReliability sets RSN, RT and RF from the SNR and the expected
// time and frequency spreads.
func digitalReliability(p *Path) {
	D := p.Distance
	ratio := p.Frequency / p.BMUF
	var Tm float64
	if D <= 2000.0 {
		Tm = math.Min(2.5e7*(1.0-ratio*ratio)*math.Pow(D, -2), 7.0-0.00175*D)
	} else {
		Tm = math.Min(4.27e-2*(1.0-ratio*ratio)*math.Pow(D, 0.65), 3.5)
	}
	Fm := 0.02 * p.Frequency * Tm
	dT := 0.15 * Tm
	dF := 0.1 * Fm

	p.RSN = reliability(p.SNR, p.SNRr, p.DuSN, p.DlSN)

	if Tm >= p.T0 {
		p.RT = math.Min(130.0-80.0/(1.0+(p.T0-Tm)/dT), 100.0)
	} else {
		p.RT = math.Max(80.0/(1.0+(Tm-p.T0)/dT)-30.0, 0.0)
	}
	if Fm >= p.F0 {
		p.RF = math.Min(130.0-80.0/(1.0+(p.F0-Fm)/dF), 100.0)
	} else {
		p.RF = math.Max(80.0/(1.0+(Fm-p.F0)/dF)-30.0, 0.0)
	}
}

// signalModes partitions the existing modes of a digital path, each list
// in slot order.
type signalModes struct {
	signal      []model.ModeIndex
	interferers []model.ModeIndex
}

// DigitalModulationSignalAndInterferers sets every existing mode's group
// delay and returns the signal level of a digital system with the modes
// that form it. Modes within A dB of the strongest and arriving within TW
// ms of the earliest are signal; the rest interfere. Fewer than two modes,
// or paths beyond 9000 km, fall back to Pr.
func DigitalModulationSignalAndInterferers(p *Path) (float64, signalModes) {
	var out signalModes
	if p.Distance > 9000.0 {
		return p.Pr, out
	}

	for n := range p.E {
		if p.E[n].Exists() {
			p.E[n].Tau = groupDelay(p.Distance, n, hrELayerKm)
		}
	}
	for n := range p.F2 {
		if p.F2[n].Exists() {
			p.F2[n].Tau = groupDelay(p.Distance, n, p.F2[n].Hr)
		}
	}

	modes := p.allModes()
	strongest, soonest := -1, -1
	count := 0
	for i, m := range modes {
		if !m.Exists() {
			continue
		}
		count++
		if strongest < 0 || m.Ew > modes[strongest].Ew {
			strongest = i
		}
		if soonest < 0 || m.Tau < modes[soonest].Tau {
			soonest = i
		}
	}
	if count < 2 {
		return p.Pr, out
	}

	deltat := modes[soonest].Tau + p.TW/1000.0
	deltaA := modes[strongest].Prw - p.A

	var ssum float64
	for i, m := range modes {
		if !m.Exists() {
			continue
		}
		if m.Prw >= deltaA && m.Tau <= deltat {
			ssum += math.Pow(math.Pow(10.0, m.Ew/10.0), 2)
			out.signal = append(out.signal, model.ModeFromSlot(i))
		} else {
			out.interferers = append(out.interferers, model.ModeFromSlot(i))
		}
	}

	etw := TinyDB
	if ssum > 0 {
		etw = 10.0 * math.Log10(math.Sqrt(ssum))
	}
	return etw + p.Grw - 20.0*math.Log10(p.Frequency) - 107.2, out
}

// groupDelay returns the delay in ms of the n-hop mode reflecting at hr.
// The slant range here uses cos(delta-psi).
func groupDelay(distance float64, n int, hr float64) float64 {
	hops := float64(n + 1)
	dh := distance / hops
	delta := ElevationAngle(dh, hr)
	psi := dh / (2.0 * R0)
	ptick := 2.0 * R0 * (math.Sin(psi) / math.Cos(delta-psi))
	return hops * (ptick / VofL) * 1000.0
}
