package gazetteer

import (
	"github.com/paulmach/orb"
)

// Coordinates are [longitude, latitude].
var default_entries = map[string]orb.Point{

	// cities

	"bucuresti":         orb.Point{26.1025, 44.4268},
	"bucharest":         orb.Point{26.1025, 44.4268},
	"brasov":            orb.Point{25.6012, 45.6580},
	"sibiu":             orb.Point{24.1256, 45.7983},
	"cluj":              orb.Point{23.6236, 46.7712},
	"cluj napoca":       orb.Point{23.6236, 46.7712},
	"sighisoara":        orb.Point{24.7923, 46.2197},
	"timisoara":         orb.Point{21.2087, 45.7489},
	"oradea":            orb.Point{21.9189, 47.0465},
	"iasi":              orb.Point{27.6014, 47.1585},
	"suceava":           orb.Point{26.2556, 47.6514},
	"constanta":         orb.Point{28.6348, 44.1598},
	"tulcea":            orb.Point{28.8050, 45.1716},
	"alba iulia":        orb.Point{23.5805, 46.0677},
	"medias":            orb.Point{24.3500, 46.1667},
	"hunedoara":         orb.Point{22.9006, 45.7497},
	"piatra neamt":      orb.Point{26.3809, 46.9275},
	"sighetu marmatiei": orb.Point{23.8893, 47.9284},
	"curtea de arges":   orb.Point{24.6789, 45.1389},
	"targu mures":       orb.Point{24.5575, 46.5456},

	// mountains, lakes, gorges

	"bicaz":              orb.Point{26.0856, 46.9130},
	"lacul bicaz":        orb.Point{26.0500, 46.9500},
	"cheile bicazului":   orb.Point{25.8236, 46.8136},
	"lacul rosu":         orb.Point{25.7889, 46.7889},
	"ceahlau":            orb.Point{25.9500, 46.9667},
	"durau":              orb.Point{25.9167, 46.9903},
	"bucegi":             orb.Point{25.4667, 45.4000},
	"babele":             orb.Point{25.4639, 45.4047},
	"sfinxul":            orb.Point{25.4622, 45.4008},
	"piatra craiului":    orb.Point{25.2167, 45.5333},
	"transfagarasan":     orb.Point{24.6167, 45.6030},
	"balea lac":          orb.Point{24.6169, 45.6036},
	"vidraru":            orb.Point{24.6333, 45.3667},
	"transalpina":        orb.Point{23.7333, 45.4000},
	"cheile turzii":      orb.Point{23.6797, 46.5644},
	"pestera scarisoara": orb.Point{22.8100, 46.4894},
	"cazanele dunarii":   orb.Point{22.3000, 44.6333},
	"delta dunarii":      orb.Point{29.3000, 45.1667},
	"sulina":             orb.Point{29.6533, 45.1561},
	"vama veche":         orb.Point{28.5725, 43.7528},

	// towns, castles, monasteries

	"bran":                orb.Point{25.3673, 45.5152},
	"castelul bran":       orb.Point{25.3672, 45.5149},
	"sinaia":              orb.Point{25.5497, 45.3500},
	"peles":               orb.Point{25.5426, 45.3599},
	"busteni":             orb.Point{25.5393, 45.4145},
	"predeal":             orb.Point{25.5772, 45.5039},
	"rasnov":              orb.Point{25.4604, 45.5929},
	"zarnesti":            orb.Point{25.3333, 45.5667},
	"viscri":              orb.Point{25.0889, 46.0556},
	"biertan":             orb.Point{24.5219, 46.1349},
	"castelul corvinilor": orb.Point{22.8883, 45.7491},
	"sarmizegetusa":       orb.Point{23.3106, 45.6233},
	"salina turda":        orb.Point{23.7905, 46.5878},
	"turda":               orb.Point{23.7856, 46.5667},
	"rosia montana":       orb.Point{23.1311, 46.3067},
	"voronet":             orb.Point{25.8669, 47.5172},
	"sucevita":            orb.Point{25.7117, 47.7783},
	"sapanta":             orb.Point{23.6947, 47.9714},
	"baile herculane":     orb.Point{22.4133, 44.8797},
}
