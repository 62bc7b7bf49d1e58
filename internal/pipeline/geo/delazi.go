package geo

import "math"

const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	wgs84B = wgs84A * (1 - wgs84F)

	meanEarthRadiusKm = 6371.0
	// KmPerDegree is the length of one arc degree on the mean-radius sphere.
	KmPerDegree = 2 * math.Pi * meanEarthRadiusKm / 360

	// PickKmPerDegree converts arc degrees into the kilometers used by the pick distance gate.
	PickKmPerDegree = 110.0

	maxIterations = 200
	convergence   = 1e-12
)

// DelaziWGS84 returns the distance in arc degrees between two points on the WGS-84 ellipsoid
// together with the azimuth from the first point and the back azimuth from the second point,
// both in degrees clockwise from north. The ellipsoidal surface distance is converted into
// degrees on the mean-radius sphere.
func DelaziWGS84(lat1, lon1, lat2, lon2 float64) (delta, azimuth, backAzimuth float64) {
	meters, az, baz, ok := vincentyInverse(lat1, lon1, lat2, lon2)
	if !ok {
		// nearly antipodal points, Vincenty does not converge
		return sphericalDelazi(lat1, lon1, lat2, lon2)
	}
	return meters / 1000 / KmPerDegree, az, baz
}

// DistanceKm is the pick separation used when pairing picks: arc degrees times 110 km.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	delta, _, _ := DelaziWGS84(lat1, lon1, lat2, lon2)
	return delta * PickKmPerDegree
}

func vincentyInverse(lat1, lon1, lat2, lon2 float64) (meters, azimuth, backAzimuth float64, ok bool) {
	l := radians(lon2 - lon1)
	u1 := math.Atan((1 - wgs84F) * math.Tan(radians(lat1)))
	u2 := math.Atan((1 - wgs84F) * math.Tan(radians(lat2)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM, sinLambda, cosLambda float64
	converged := false
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)
		sinSigma = math.Hypot(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
		if sinSigma == 0 {
			return 0, 0, 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			// equatorial line
			cos2SigmaM = 0
		}
		c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		previous := lambda
		lambda = l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-previous) < convergence {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, 0, false
	}

	uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := b * sinSigma * (cos2SigmaM + b/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	meters = wgs84B * a * (sigma - deltaSigma)

	azimuth = degrees(math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda))
	forwardAtSecond := degrees(math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda))
	return meters, normalizeAzimuth(azimuth), normalizeAzimuth(forwardAtSecond + 180), true
}

func sphericalDelazi(lat1, lon1, lat2, lon2 float64) (delta, azimuth, backAzimuth float64) {
	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := phi2 - phi1
	dLambda := radians(lon2 - lon1)
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	delta = degrees(2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h)))
	azimuth = bearing(phi1, phi2, dLambda)
	backAzimuth = bearing(phi2, phi1, -dLambda)
	return delta, azimuth, backAzimuth
}

func bearing(phi1, phi2, dLambda float64) float64 {
	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return normalizeAzimuth(degrees(math.Atan2(y, x)))
}

func normalizeAzimuth(az float64) float64 {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
