package app

import "strings"

// Heuristics that lift structured lists out of free-form interpretation
// text. The model is asked for a specific shape but not trusted to deliver
// it, so every extractor has a fixed fallback.

var symbolKeywords = []string{"sembol", "şekil", "görünüm", "tanımlanan"}

var fallbackSymbols = []string{"Gizli mesajlar", "Belirsiz şekiller", "Enerji akışları"}

// extractSymbols scans interpretation text for lines that name a coffee
// ground symbol. A line qualifies when it mentions one of the keywords; the
// label is the text after the colon when present, the whole line otherwise.
func extractSymbols(text string) []string {
	var symbols []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		matched := false
		for _, kw := range symbolKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		label := line
		if idx := strings.Index(line, ":"); idx >= 0 {
			label = strings.TrimSpace(line[idx+1:])
		}
		label = strings.Trim(label, "-*• .")
		n := len([]rune(label))
		if n < 3 || n >= 50 {
			continue
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		symbols = append(symbols, label)
		if len(symbols) == 10 {
			break
		}
	}
	if len(symbols) == 0 {
		return append([]string(nil), fallbackSymbols...)
	}
	return symbols
}

var palmLineNames = []string{"Kalp çizgisi", "Akıl çizgisi", "Yaşam çizgisi", "Kader çizgisi"}

var fallbackPalmLines = []string{"Yaşam çizgisi", "Kalp çizgisi", "Akıl çizgisi"}

// extractPalmLines returns the canonical palm line names the interpretation
// mentions, in canonical order.
func extractPalmLines(text string) []string {
	lower := strings.ToLower(text)
	var lines []string
	for _, name := range palmLineNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			lines = append(lines, name)
		}
	}
	if len(lines) == 0 {
		return append([]string(nil), fallbackPalmLines...)
	}
	return lines
}

// falnameSections carries the three parts of a falname answer.
type falnameSections struct {
	Verse          string
	Interpretation string
	Advice         string
}

// splitFalname parses a response that was asked to use BEYİT:/YORUM:/TAVSİYE:
// headers. When the model ignores the format, the text is split into rough
// thirds so no section comes back empty.
func splitFalname(text string) falnameSections {
	verse := sectionAfter(text, []string{"BEYİT:", "BEYIT:", "Beyit:"})
	interp := sectionAfter(text, []string{"YORUM:", "Yorum:"})
	advice := sectionAfter(text, []string{"TAVSİYE:", "TAVSIYE:", "Tavsiye:"})
	if verse != "" && interp != "" && advice != "" {
		return falnameSections{Verse: verse, Interpretation: interp, Advice: advice}
	}

	lines := nonEmptyLines(text)
	if len(lines) < 3 {
		whole := strings.TrimSpace(text)
		return falnameSections{Verse: whole, Interpretation: whole, Advice: whole}
	}
	third := len(lines) / 3
	return falnameSections{
		Verse:          strings.Join(lines[:third], "\n"),
		Interpretation: strings.Join(lines[third:2*third], "\n"),
		Advice:         strings.Join(lines[2*third:], "\n"),
	}
}

// sectionAfter returns the text between the first matching header and the
// next header (or end of text).
func sectionAfter(text string, headers []string) string {
	start := -1
	var headerLen int
	for _, h := range headers {
		if idx := strings.Index(text, h); idx >= 0 && (start < 0 || idx < start) {
			start = idx
			headerLen = len(h)
		}
	}
	if start < 0 {
		return ""
	}
	rest := text[start+headerLen:]
	end := len(rest)
	for _, h := range []string{"BEYİT:", "BEYIT:", "Beyit:", "YORUM:", "Yorum:", "TAVSİYE:", "TAVSIYE:", "Tavsiye:"} {
		if idx := strings.Index(rest, h); idx >= 0 && idx < end {
			end = idx
		}
	}
	return strings.TrimSpace(rest[:end])
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines
}
