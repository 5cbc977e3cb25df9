package engine

import "testing"

func TestEvaluate_AllCorrect(t *testing.T) {
	fb := Evaluate("HELLO", "HELLO")
	if len(fb) != 5 || !fb.AllCorrect() {
		t.Fatalf("want all correct, got %v", fb)
	}
}

func TestEvaluate_DuplicateLetters(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		guess  string
		want   Feedback
	}{
		{
			name:   "RARER vs ERASE",
			secret: "ERASE",
			guess:  "RARER",
			want:   Feedback{MarkPresent, MarkPresent, MarkAbsent, MarkPresent, MarkAbsent},
		},
		{
			name:   "LLAMA vs HELLO",
			secret: "HELLO",
			guess:  "LLAMA",
			want:   Feedback{MarkPresent, MarkPresent, MarkAbsent, MarkAbsent, MarkAbsent},
		},
		{
			name:   "BABES vs ABBEY",
			secret: "ABBEY",
			guess:  "BABES",
			want:   Feedback{MarkPresent, MarkPresent, MarkCorrect, MarkCorrect, MarkAbsent},
		},
		{
			name:   "no overlap",
			secret: "HELLO",
			guess:  "TRAIN",
			want:   Feedback{MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent, MarkAbsent},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.guess, tc.secret)
			if len(got) != len(tc.want) {
				t.Fatalf("length: got %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("position %d: got %v, want %v (full: %v)", i, got[i], tc.want[i], got)
				}
			}
		})
	}
}

// A letter is never marked present+correct more times than it occurs in the
// secret, regardless of how often it repeats in the guess.
func TestEvaluate_MarkCountNeverExceedsSecretCount(t *testing.T) {
	pairs := []struct{ secret, guess string }{
		{"ERASE", "RARER"},
		{"HELLO", "LLLLL"},
		{"ABBEY", "BBBBB"},
		{"WORLD", "OOOOO"},
	}
	for _, p := range pairs {
		fb := Evaluate(p.guess, p.secret)
		if len(fb) != len(p.secret) {
			t.Fatalf("%s vs %s: length %d", p.guess, p.secret, len(fb))
		}
		var secretCount, marked [26]int
		for i := 0; i < len(p.secret); i++ {
			secretCount[p.secret[i]-'A']++
		}
		for i, m := range fb {
			if m != MarkCorrect && m != MarkPresent && m != MarkAbsent {
				t.Fatalf("invalid mark %q", m)
			}
			if m != MarkAbsent {
				marked[p.guess[i]-'A']++
			}
		}
		for c := 0; c < 26; c++ {
			if marked[c] > secretCount[c] {
				t.Fatalf("%s vs %s: letter %c marked %d times but occurs %d times",
					p.guess, p.secret, 'A'+c, marked[c], secretCount[c])
			}
		}
	}
}
