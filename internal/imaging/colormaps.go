package imaging

import "github.com/lucasb-eyer/go-colorful"

func stop(pos, r, g, b float64) colorStop {
	return colorStop{pos: pos, color: colorful.Color{R: r, G: g, B: b}}
}

// Опорные точки hot, cool, gray, jet повторяют сегменты matplotlib; rainbow снят по восьмым.
// Перцептивные палитры и turbo сняты из эталонных таблиц с шагом 0.1.
var registry = map[string]*Colormap{
	"viridis": newColormap("viridis",
		stop(0.0, 0.267004, 0.004874, 0.329415),
		stop(0.1, 0.282623, 0.140926, 0.457517),
		stop(0.2, 0.253935, 0.265254, 0.529983),
		stop(0.3, 0.206756, 0.371758, 0.553117),
		stop(0.4, 0.163625, 0.471133, 0.558148),
		stop(0.5, 0.127568, 0.566949, 0.550556),
		stop(0.6, 0.134692, 0.658636, 0.517649),
		stop(0.7, 0.266941, 0.748751, 0.440573),
		stop(0.8, 0.477504, 0.821444, 0.318195),
		stop(0.9, 0.741388, 0.873449, 0.149561),
		stop(1.0, 0.993248, 0.906157, 0.143936),
	),
	"plasma": newColormap("plasma",
		stop(0.0, 0.050383, 0.029803, 0.527975),
		stop(0.1, 0.254627, 0.013882, 0.615419),
		stop(0.2, 0.417642, 0.000564, 0.658390),
		stop(0.3, 0.562738, 0.051545, 0.641509),
		stop(0.4, 0.692840, 0.165141, 0.564522),
		stop(0.5, 0.798216, 0.280197, 0.469538),
		stop(0.6, 0.881443, 0.392529, 0.383229),
		stop(0.7, 0.949217, 0.517763, 0.295662),
		stop(0.8, 0.988260, 0.652325, 0.211364),
		stop(0.9, 0.988648, 0.809579, 0.145357),
		stop(1.0, 0.940015, 0.975158, 0.131326),
	),
	"inferno": newColormap("inferno",
		stop(0.0, 0.001462, 0.000466, 0.013866),
		stop(0.1, 0.087411, 0.044556, 0.224813),
		stop(0.2, 0.258234, 0.038571, 0.406485),
		stop(0.3, 0.416331, 0.090203, 0.432943),
		stop(0.4, 0.578304, 0.148039, 0.404411),
		stop(0.5, 0.735683, 0.215906, 0.330245),
		stop(0.6, 0.865006, 0.316822, 0.226055),
		stop(0.7, 0.954506, 0.468744, 0.099874),
		stop(0.8, 0.987622, 0.645320, 0.039886),
		stop(0.9, 0.964394, 0.843848, 0.273391),
		stop(1.0, 0.988362, 0.998364, 0.644924),
	),
	"magma": newColormap("magma",
		stop(0.0, 0.001462, 0.000466, 0.013866),
		stop(0.1, 0.078815, 0.054184, 0.211667),
		stop(0.2, 0.232077, 0.059889, 0.437695),
		stop(0.3, 0.390384, 0.100379, 0.501864),
		stop(0.4, 0.550287, 0.161158, 0.505719),
		stop(0.5, 0.716387, 0.214982, 0.475290),
		stop(0.6, 0.868793, 0.287728, 0.409303),
		stop(0.7, 0.967671, 0.439703, 0.359810),
		stop(0.8, 0.994738, 0.624350, 0.427397),
		stop(0.9, 0.995131, 0.812779, 0.572474),
		stop(1.0, 0.987053, 0.991438, 0.749504),
	),
	"turbo": newColormap("turbo",
		stop(0.0, 0.189950, 0.071760, 0.232170),
		stop(0.1, 0.270280, 0.359300, 0.811560),
		stop(0.2, 0.163570, 0.625470, 0.984470),
		stop(0.3, 0.095750, 0.842300, 0.796540),
		stop(0.4, 0.307150, 0.972400, 0.506820),
		stop(0.5, 0.644860, 0.990140, 0.236080),
		stop(0.6, 0.898560, 0.858730, 0.212530),
		stop(0.7, 0.996160, 0.635510, 0.129920),
		stop(0.8, 0.944770, 0.395430, 0.057010),
		stop(0.9, 0.772840, 0.167390, 0.013720),
		stop(1.0, 0.479600, 0.015830, 0.010550),
	),
	"hot": newColormap("hot",
		stop(0.0, 0.0416, 0, 0),
		stop(0.365079, 1, 0, 0),
		stop(0.746032, 1, 1, 0),
		stop(1.0, 1, 1, 1),
	),
	"cool": newColormap("cool",
		stop(0.0, 0, 1, 1),
		stop(1.0, 1, 0, 1),
	),
	"gray": newColormap("gray",
		stop(0.0, 0, 0, 0),
		stop(1.0, 1, 1, 1),
	),
	"jet": newColormap("jet",
		stop(0.0, 0, 0, 0.5),
		stop(0.11, 0, 0, 1),
		stop(0.125, 0, 0, 1),
		stop(0.34, 0, 0.86, 1),
		stop(0.35, 0, 0.9, 0.967742),
		stop(0.375, 0.080645, 1, 0.887097),
		stop(0.64, 0.935484, 1, 0.032258),
		stop(0.65, 0.967742, 0.962963, 0),
		stop(0.66, 1, 0.925926, 0),
		stop(0.89, 1, 0.074074, 0),
		stop(0.91, 0.909091, 0, 0),
		stop(1.0, 0.5, 0, 0),
	),
	"rainbow": newColormap("rainbow",
		stop(0.0, 0.5, 0, 1),
		stop(0.125, 0.25, 0.382683, 0.980785),
		stop(0.25, 0, 0.707107, 0.923880),
		stop(0.375, 0.25, 0.923880, 0.831470),
		stop(0.5, 0.5, 1, 0.707107),
		stop(0.625, 0.75, 0.923880, 0.555570),
		stop(0.75, 1, 0.707107, 0.382683),
		stop(0.875, 1, 0.382683, 0.195090),
		stop(1.0, 1, 0, 0),
	),
}
