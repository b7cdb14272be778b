package readability

import "github.com/incluia/assessment-adapter/internal/domain"

// Band thresholds apply to the rounded metric value. Lower bounds are
// inclusive unless noted.

func ReadingEaseBand(v float64) domain.Band {
	switch {
	case v >= 90:
		return domain.BandVeryEasy
	case v >= 70:
		return domain.BandEasy
	case v >= 50:
		return domain.BandMedium
	default:
		return domain.BandHard
	}
}

// GradeLevelBand classifies the Flesch-Kincaid grade. Secondary includes 12.
func GradeLevelBand(v float64) domain.Band {
	switch {
	case v < 6:
		return domain.BandEarlyPrimary
	case v < 9:
		return domain.BandLatePrimary
	case v <= 12:
		return domain.BandSecondary
	default:
		return domain.BandTertiary
	}
}

// SMOGBand classifies the SMOG grade. Secondary includes 12.
func SMOGBand(v float64) domain.Band {
	switch {
	case v < 9:
		return domain.BandPrimary
	case v <= 12:
		return domain.BandSecondary
	default:
		return domain.BandTertiary
	}
}

// LexicalDiversityBand: above 0.7 high, 0.5 through 0.7 medium, below low.
func LexicalDiversityBand(v float64) domain.Band {
	switch {
	case v > 0.7:
		return domain.BandHigh
	case v >= 0.5:
		return domain.BandMedium
	default:
		return domain.BandLow
	}
}
