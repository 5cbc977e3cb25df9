package engine

// Mark classifies one letter of a guess.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Feedback is the per-position marking of a whole guess. Its length always
// equals the word length.
type Feedback []Mark

// Evaluate runs the classic two-pass comparison of guess against secret.
// Both must be uppercase and the same length (the engine validates length
// before calling).
//
// Pass one marks exact matches and counts the remaining secret letters.
// Pass two resolves present/absent left to right against those counts, so a
// letter is never marked present more times than it occurs in the secret.
func Evaluate(guess, secret string) Feedback {
	n := len(secret)
	fb := make(Feedback, n)

	var remaining [26]int
	for i := 0; i < n; i++ {
		if guess[i] == secret[i] {
			fb[i] = MarkCorrect
		} else {
			remaining[secret[i]-'A']++
		}
	}

	for i := 0; i < n; i++ {
		if fb[i] == MarkCorrect {
			continue
		}
		j := int(guess[i] - 'A')
		if j >= 0 && j < 26 && remaining[j] > 0 {
			fb[i] = MarkPresent
			remaining[j]--
		} else {
			fb[i] = MarkAbsent
		}
	}
	return fb
}

// AllCorrect reports whether every position is an exact match.
func (f Feedback) AllCorrect() bool {
	for _, m := range f {
		if m != MarkCorrect {
			return false
		}
	}
	return len(f) > 0
}
