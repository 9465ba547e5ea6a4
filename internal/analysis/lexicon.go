package analysis

type keywordGroup struct {
	name     string
	keywords []string
}

// genreLexicon is ordered: ties in hit count keep this order.
var genreLexicon = []keywordGroup{
	{"Dramas", []string{"drama", "emotional", "serious", "tragic", "intense"}},
	{"Comedies", []string{"comedy", "funny", "humor", "laugh", "hilarious"}},
	{"Action & Adventure", []string{"action", "adventure", "thrilling", "exciting", "explosive"}},
	{"Thrillers", []string{"thriller", "suspense", "mystery", "tension", "suspenseful"}},
	{"Horror Movies", []string{"horror", "scary", "frightening", "terrifying", "spooky"}},
	{"Romantic TV Shows", []string{"romance", "romantic", "love", "relationship", "dating"}},
	{"Documentaries", []string{"documentary", "real", "factual", "educational", "informative"}},
	{"Children & Family Movies", []string{"family", "children", "kid", "friendly", "wholesome"}},
	{"Anime Features", []string{"anime", "japanese", "animation", "manga", "cartoon"}},
}

var (
	positiveWords = []string{"amazing", "brilliant", "excellent", "fantastic", "great", "wonderful"}
	negativeWords = []string{"terrible", "awful", "horrible", "bad", "disappointing", "boring"}
	neutralWords  = []string{"average", "okay", "decent", "standard", "normal"}
)

var warningLexicon = []keywordGroup{
	{"violence", []string{"violence", "blood", "gore", "fighting", "war"}},
	{"language", []string{"profanity", "swearing", "cursing", "explicit"}},
	{"sexual_content", []string{"sexual", "nudity", "adult", "mature"}},
	{"drugs", []string{"drugs", "alcohol", "smoking", "substance"}},
}

// popularGenres earn the genre bonus in the recommendation score.
var popularGenres = map[string]struct{}{
	"Dramas":                   {},
	"Comedies":                 {},
	"Documentaries":            {},
	"Action & Adventure":       {},
	"International TV Shows":   {},
	"Romantic TV Shows":        {},
	"Children & Family Movies": {},
	"Thrillers":                {},
	"Horror Movies":            {},
	"Anime Features":           {},
}

const defaultAudience = "General"

var audienceByRating = map[string]string{
	"TV-Y":  "Young children",
	"TV-Y7": "Children 7+",
	"TV-G":  "General audience",
	"TV-PG": "Children with parental guidance",
	"TV-14": "Teens 14+",
	"TV-MA": "Adults",
	"G":     "General audience",
	"PG":    "Children with parental guidance",
	"PG-13": "Teens 13+",
	"R":     "Adults",
	"NC-17": "Adults only",
}

// similarByGenre is matched case-sensitively against the listed_in column.
var similarByGenre = []struct {
	marker string
	titles []string
}{
	{"Drama", []string{"Breaking Bad", "The Crown", "Ozark"}},
	{"Comedy", []string{"The Office", "Friends", "Parks and Recreation"}},
	{"Action", []string{"The Witcher", "Stranger Things", "Money Heist"}},
}

// Genres returns the genre categories the analyzer can predict, in
// declaration order.
func Genres() []string {
	out := make([]string, len(genreLexicon))
	for i, g := range genreLexicon {
		out[i] = g.name
	}
	return out
}
