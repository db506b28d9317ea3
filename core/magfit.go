package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// Gauss coefficients of the degree-6 field model, indexed [m][n].
var (
	magG = [7][7]float64{
		{0.000000, 0.304112, 0.024035, -0.031518, -0.041794, 0.016256, -0.019523},
		{0.000000, 0.021474, -0.051253, 0.062130, -0.045298, -0.034407, -0.004853},
		{0.000000, 0.000000, -0.013381, -0.024898, -0.021795, -0.019447, 0.003212},
		{0.000000, 0.000000, 0.000000, -0.0064960, 0.007008, -0.000608, 0.021413},
		{0.000000, 0.000000, 0.000000, 0.000000, -0.002044, 0.002775, 0.001051},
		{0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000697, 0.000227},
		{0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.001115},
	}
	magH = [7][7]float64{
		{0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000},
		{0.000000, -0.057989, 0.033124, 0.014870, -0.011825, -0.000796, -0.005758},
		{0.000000, 0.000000, -0.001579, -0.004075, 0.010006, -0.002000, -0.008735},
		{0.000000, 0.000000, 0.000000, 0.000210, 0.000430, 0.004597, -0.003406},
		{0.000000, 0.000000, 0.000000, 0.000000, 0.001385, 0.002421, -0.000118},
		{0.000000, 0.000000, 0.000000, 0.000000, 0.000000, -0.001218, -0.001116},
		{0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, -0.000325},
	}
	magCT = [7][7]float64{
		{0.0000000, 0.0000000, 0.33333333, 0.266666666, 0.25714286, 0.25396825, 0.25252525},
		{0.0000000, 0.0000000, 0.00000000, 0.200000000, 0.22857142, 0.23809523, 0.24242424},
		{0.0000000, 0.0000000, 0.00000000, 0.000000000, 0.14285714, 0.19047619, 0.21212121},
		{0.0000000, 0.0000000, 0.00000000, 0.000000000, 0.00000000, 0.11111111, 0.16161616},
		{0.0000000, 0.0000000, 0.00000000, 0.000000000, 0.00000000, 0.00000000, 0.09090909},
		{},
		{},
	}
)

// Magfit evaluates the geomagnetic field at loc and height (km) and returns
// the magnetic dip (radians) and the electron gyrofrequency (MHz).
func Magfit(loc model.Location, height float64) (dip, fH float64) {
	var P, DP [7][7]float64
	P[0][0] = 1.0

	sinLat, cosLat := math.Sin(loc.Lat), math.Cos(loc.Lat)
	AR := R0 / (R0 + height)

	var Fx, Fy, Fz float64
	for N := 1; N <= 6; N++ {
		var sumZ, sumX, sumY float64
		for M := 0; M <= N; M++ {
			switch {
			case N == M:
				P[M][N] = cosLat * P[M-1][N-1]
				DP[M][N] = cosLat*DP[M-1][N-1] + sinLat*P[M-1][N-1]
			case N != 1:
				P[M][N] = sinLat*P[M][N-1] - magCT[M][N]*P[M][N-2]
				DP[M][N] = sinLat*DP[M][N-1] - cosLat*P[M][N-1] - magCT[M][N]*DP[M][N-2]
			default:
				P[M][N] = sinLat * P[M][N-1]
				DP[M][N] = sinLat*DP[M][N-1] - cosLat*P[M][N-1]
			}
			cm, sm := math.Cos(float64(M)*loc.Lng), math.Sin(float64(M)*loc.Lng)
			sumZ += P[M][N] * (magG[M][N]*cm + magH[M][N]*sm)
			sumX += DP[M][N] * (magG[M][N]*cm + magH[M][N]*sm)
			sumY += float64(M) * P[M][N] * (magG[M][N]*sm - magH[M][N]*cm)
		}
		k := math.Pow(AR, float64(N+2))
		Fz += k * float64(N+1) * sumZ
		Fx -= k * sumX
		Fy += k * sumY
	}

	horiz := Fx*Fx + math.Pow(Fy/cosLat, 2)
	dip = math.Atan(Fz / math.Sqrt(horiz))
	fH = 2.8 * math.Sqrt(horiz+Fz*Fz)
	return dip, fH
}
