package subword

import "hash/fnv"

// ngramBuckets returns the hashed buckets of the character n-grams of word
// wrapped in "<" and ">" boundary markers.
func ngramBuckets(word string, minN, maxN int, buckets uint32) []uint32 {
	runes := []rune("<" + word + ">")
	var out []uint32
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, hashNgram(string(runes[i:i+n]))%buckets)
		}
	}
	return out
}

func hashNgram(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
