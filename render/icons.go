package render

// FallbackIcon is shown for weather codes missing from the icon table
const FallbackIcon = "clear.png"

var iconFiles = map[string]string{
	"clear":   "clear.png",
	"pcloudy": "pcloudy.png",
	"mcloudy": "mcloudy.png",
	"cloudy":  "cloudy.png",

	"humid": "humid.png",
	"fog":   "fog.png",
	"windy": "windy.png",

	"lightrain": "lightrain.png",
	"rain":      "rain.png",
	"oshower":   "oshower.png",
	"ishower":   "ishower.png",

	"lightsnow": "lightsnow.png",
	"snow":      "snow.png",
	"rainsnow":  "rainsnow.png",

	"ts":     "tstorm.png",
	"tsrain": "tsrain.png",
}

// IconFor returns the icon file name for a weather code
func IconFor(code string) string {
	if file, ok := iconFiles[code]; ok {
		return file
	}
	return FallbackIcon
}
