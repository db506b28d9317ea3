package core

import (
	"math"

	"github.com/signalsfoundry/hfprop/model"
)

// Day of the year preceding the first of each month.
var dayOfYear = [12]int{0, 31, 59, 90, 120, 152, 181, 212, 243, 273, 304, 334}

// SolarParameters computes the solar geometry at loc for the 15th day of
// month (0..11) at UTC hour. Sunrise, noon and sunset are returned in UTC
// fractional hours.
func SolarParameters(loc model.Location, month int, hour float64) model.Sun {
	const (
		A = 0.98565327 // mean orbital angle per day, degrees
		B = 3.98891967 // minutes per degree of rotation
	)
	S := math.Sin(23.45 * D2R)
	C := math.Cos(23.45 * D2R)
	V := 78.746118 * D2R // nu on March 21st

	tzone := float64(int(loc.Lng / (15.0 * D2R)))
	ltime := hour + tzone

	D := float64(dayOfYear[month]) + 15.0 + hour/24.0

	// Elliptic orbit with perihelion on January 2nd.
	lambda := A * D2R * (D - 2)
	nu := lambda + 1.915169*D2R*math.Sin(lambda)

	epsilon := A * D2R * (D - 80)
	if epsilon >= 270*D2R {
		epsilon -= 2.0 * math.Pi
	} else if epsilon >= 90*D2R {
		epsilon -= math.Pi
	}
	beta := math.Atan(C * math.Tan(epsilon))

	var sun model.Sun
	sun.EOT = B * ((epsilon - beta) + (lambda - nu)) * R2D
	sun.Decl = math.Asin(S * math.Sin((math.Sin(A*(D-2)*D2R)*0.016713+A*(D-2)*D2R)-V))

	toffset := ((loc.Lng/(15.0*D2R))-tzone)*60.0 + sun.EOT
	tst := ltime*60 + toffset
	sun.HA = ((tst / 4.0) - 180) * D2R

	sun.SHA = math.Acos(math.Cos(90.833*D2R)/(math.Cos(loc.Lat)*math.Cos(sun.Decl)) - math.Tan(loc.Lat)*math.Tan(sun.Decl))

	cosphi := math.Sin(loc.Lat)*math.Sin(sun.Decl) + math.Cos(loc.Lat)*math.Cos(sun.Decl)*math.Cos(sun.HA)
	cosphi = math.Max(-1.0, math.Min(1.0, cosphi))
	sun.SZA = math.Acos(cosphi)

	sun.LSR = math.Mod((720.0+(-loc.Lng-sun.SHA)*R2D*4.0-sun.EOT)/60.0+24.0, 24.0)
	sun.LSS = math.Mod((720.0+(-loc.Lng+sun.SHA)*R2D*4.0-sun.EOT)/60.0+24.0, 24.0)
	sun.LSN = math.Mod((720.0+(-loc.Lng)*R2D*4.0-sun.EOT)/60.0+24.0, 24.0)
	return sun
}

// WhatSeason returns the season at loc for month (0..11). The equator
// counts as northern.
func WhatSeason(loc model.Location, month int) model.Season {
	var north model.Season
	switch month {
	case nov, dec, jan, feb:
		north = model.Winter
	case may, jun, jul, aug:
		north = model.Summer
	default:
		return model.Equinox
	}
	if loc.Lat >= 0 {
		return north
	}
	if north == model.Winter {
		return model.Summer
	}
	return model.Winter
}
