package workbook

import "fmt"

// headerNames turns the first sheet row into width unique column names.
// Missing headers become "Unnamed: <index>" and repeated names get ".1", ".2"
// suffixes in order of appearance.
func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	suffix := make(map[string]int)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = raw[i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		if used[name] {
			base := name
			for n := suffix[base] + 1; ; n++ {
				candidate := fmt.Sprintf("%s.%d", base, n)
				if !used[candidate] {
					name = candidate
					suffix[base] = n
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}
