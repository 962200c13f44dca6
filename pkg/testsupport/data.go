package testsupport

// ApplicationData returns a fully answered submission for the
// application.yaml fixture. Each call returns a fresh copy.
func ApplicationData() map[string]any {
	return map[string]any{
		"fullName":       "Ada Lovelace",
		"email":          "ada@example.com",
		"age":            30,
		"employment":     "employed",
		"employer":       "Analytical Engines Ltd",
		"income":         24000.5,
		"hasCoApplicant": true,
		"dependents": []any{
			map[string]any{"name": "Byron", "age": 4},
			map[string]any{"name": "Ann", "age": 2},
		},
		"startDate": "2026-02-14",
		"agree":     true,
	}
}
