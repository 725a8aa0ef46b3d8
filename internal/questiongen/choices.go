package questiongen

import "math/rand"

// maxChoices includes the correct answer.
const maxChoices = 4

// buildChoices shuffles the distractor candidates, keeps up to three, adds the
// answer and shuffles again. Values equal to the answer or to each other are
// dropped, so fewer than four choices come back when others is short.
func buildChoices(answer string, others []string, rnd *rand.Rand) []string {
	candidates := uniqueExcept(others, answer)
	rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > maxChoices-1 {
		candidates = candidates[:maxChoices-1]
	}

	out := make([]string, 0, len(candidates)+1)
	out = append(out, answer)
	out = append(out, candidates...)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return uniqueExcept(out, "")
}

// uniqueExcept removes duplicates and empty strings while preserving order.
// Values equal to skip are dropped as well.
func uniqueExcept(values []string, skip string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || (skip != "" && v == skip) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
