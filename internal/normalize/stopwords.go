package normalize

// StopwordSet is an immutable set of lowercase tokens removed during cleaning
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet copies words into a new set
func NewStopwordSet(words ...string) StopwordSet {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return StopwordSet{words: set}
}

// Contains reports whether token is a stopword
func (s StopwordSet) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of stopwords
func (s StopwordSet) Len() int {
	return len(s.words)
}

// Union returns a new set holding the words of s and extra
func (s StopwordSet) Union(extra ...string) StopwordSet {
	words := make([]string, 0, len(s.words)+len(extra))
	for w := range s.words {
		words = append(words, w)
	}
	return NewStopwordSet(append(words, extra...)...)
}

// NameStopwords are hospitality and direction words dropped from display names
func NameStopwords() StopwordSet {
	return NewStopwordSet(
		"hotel", "tokyo", "ginza", "apartment", "inn", "guesthouse", "west", "east",
	)
}

// SlugStopwords extend the generic terms with Japanese city, ward and
// administrative tokens that URL slugs carry but display names often omit
func SlugStopwords() StopwordSet {
	return NewStopwordSet(
		// generic
		"hotel", "hotels", "apartments", "apartment", "entire", "house", "room",
		"hostel", "resort", "resorts", "inn", "guesthouse", "bnb", "bed", "breakfast", "the",
		// country / language
		"tokyo", "japan", "jp", "ja",
		// wards and districts
		"roppongi", "ginza", "shinjuku", "shibuya", "ikebukuro", "ueno", "akihabara",
		"asakusa", "asakusabashi", "nihonbashi", "kanda", "marunouchi", "shinagawa",
		"ebisu", "meguro", "setagaya", "chiyoda", "chuo", "minato", "taito",
		// cities
		"osaka", "kyoto", "yokohama", "nagoya", "sapporo", "fukuoka", "hiroshima", "kobe",
		// administrative suffixes
		"ku", "cho", "machi", "dori", "eki", "station",
	)
}
