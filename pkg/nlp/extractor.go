package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	numberExpr = `(\d+(?:\.\d+)?)`
	unitExpr   = `(kgs?|kilos?|kilograms?|grams?|gms?|g|ml|millilit(?:er|re)s?|lit(?:er|re)s?|l|pieces?|pcs|pc|units?|nos|dozens?|packs?|packets?)`
	politeExpr = `please|pls|plz|thanks|thank you|tq|ty`
	dayExpr    = `(?:today|tomorrow|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday|\d)`
	verbExpr   = `deliver(?:ed|y)?|ship(?:ped)?|send|sent`
	clockExpr  = `\d{1,2}(?::\d{2})?\s*(?:am|pm)\b|\d{1,2}\s*o'?clock\b|noon\b|midnight\b`

	// A dot ends a clause only as a sentence stop, never inside "1.5".
	stopExpr = `[,;!?]|\.(?:\s|$)`
)

type slotFamily string

const (
	familyQuantity     slotFamily = "quantity"
	familyName         slotFamily = "product.name"
	familyCategory     slotFamily = "product.category"
	familyMaxPrice     slotFamily = "product.maxPrice"
	familyAddress      slotFamily = "delivery.address"
	familyTime         slotFamily = "delivery.time"
	familyInstructions slotFamily = "delivery.instructions"
	familyMethod       slotFamily = "payment.method"
	familySplit        slotFamily = "payment.split"
)

// clause narrows a pattern to the span that starts at start and runs up to
// the first stop match after it.
type clause struct {
	start *regexp.Regexp
	stop  *regexp.Regexp
}

type slotPattern struct {
	family slotFamily
	scope  *clause
	re     *regexp.Regexp
	apply  func(m match, slots *draft) bool
}

// match exposes submatches both in original casing and case-folded.
type match struct {
	raw    string
	folded string
	idx    []int
}

func (m match) group(i int) string {
	if 2*i+1 >= len(m.idx) || m.idx[2*i] < 0 {
		return ""
	}
	return m.raw[m.idx[2*i]:m.idx[2*i+1]]
}

// end returns the offset just past group i, or -1 when it did not match.
func (m match) end(i int) int {
	if 2*i+1 >= len(m.idx) {
		return -1
	}
	return m.idx[2*i+1]
}

func (m match) foldedGroup(i int) string {
	if 2*i+1 >= len(m.idx) || m.idx[2*i] < 0 {
		return ""
	}
	return m.folded[m.idx[2*i]:m.idx[2*i+1]]
}

type draft struct {
	product  ProductSlot
	quantity *QuantitySlot
	delivery DeliverySlot
	payment  PaymentSlot
}

var (
	deliveryClause = &clause{
		start: regexp.MustCompile(`\b(?:` + verbExpr + `)(?:\s+(?:it|them|this))?\s+(?:to|at|by|on|before)\s`),
		stop:  regexp.MustCompile(`\s(?:and\s+)?(?:pay|payment|paying|split|divide)\b|\s(?:delivery|shipping)\s+(?:instructions?|notes?)\b|\s(?:` + politeExpr + `)\b|[;!?]`),
	}
	instructionsClause = &clause{
		start: regexp.MustCompile(`\b(?:delivery|shipping)\s+(?:instructions?|notes?)\b`),
		stop:  regexp.MustCompile(`\s(?:and\s+)?(?:pay|payment|paying|split|divide)\b|\s(?:` + politeExpr + `)\b|[;!?]`),
	}
	paymentClause = &clause{
		start: regexp.MustCompile(`\b(?:pay|payment|paying)\s+(?:by|using|with|through|via|in)\s`),
		stop:  regexp.MustCompile(`\s(?:and\s+)?(?:` + verbExpr + `|split|divide)\b|\s(?:` + politeExpr + `)\b|` + stopExpr),
	}
	productClause = &clause{
		start: regexp.MustCompile(`\b(?:get|buy|order|purchase)\s`),
		stop:  regexp.MustCompile(`\s(?:and\s+)?(?:` + verbExpr + `|pay|payment|paying|split|divide|from|in|under|below|within|for)\b|\s(?:` + politeExpr + `)\b|` + stopExpr),
	}

	addressTail = `(?:\s+(?:by|before)\s.*|\s+on\s+` + dayExpr + `.*|\s+at\s+(?:` + clockExpr + `).*)?$`
	captureTail = `(?:\s+(?:and\s+)?(?:under|below|within|` + verbExpr + `|pay|payment|paying|split|divide|` + politeExpr + `)\b|` + stopExpr + `|$)`

	leadingQuantity = regexp.MustCompile(`^(?:(?:about|around|approximately|approx|roughly|nearly|between|from)\s*)?\d+(?:\.\d+)?\s*(?:(?:to|and|-)\s*\d+(?:\.\d+)?\s*)?(?:` + unitExpr + `\b)?\s*(?:of\s+)?`)
	leadingArticle  = regexp.MustCompile(`^(?:a|an|some|the|me|us)\s+`)
	leadingLinker   = regexp.MustCompile(`^(?:for|of)\s+`)
	leadingClock    = regexp.MustCompile(`^(?:` + clockExpr + `)(?:\s|$)`)
	trailingClock   = regexp.MustCompile(`^\s+at\s+(?:` + clockExpr + `)`)

	yesPattern    = regexp.MustCompile(`^(?:yes|yeah|yep|yup|sure|ok|okay|fine|alright|all right|correct|right|confirm|confirmed)$`)
	noPattern     = regexp.MustCompile(`^(?:no|nope|nah|cancel|cancelled|wrong|incorrect|deny|denied)$`)
	maybePattern  = regexp.MustCompile(`^(?:maybe|perhaps|not sure|unsure|doubt|doubtful)$`)
	helpPattern   = regexp.MustCompile(`^(?:help|assist|guide|support|how to|how do i|what can i do)$`)
	cancelPattern = regexp.MustCompile(`^(?:cancel|stop|abort|terminate|end)$`)
	repeatPattern = regexp.MustCompile(`^(?:repeat|say again|say that again|pardon|what|huh|excuse me)$`)
)

var unitAliases = map[string]string{
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg",
	"g": "g", "gm": "g", "gms": "g", "gram": "g", "grams": "g",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"l": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"piece": "piece", "pieces": "piece", "pc": "piece", "pcs": "piece",
	"unit": "unit", "units": "unit", "nos": "unit",
	"dozen": "dozen", "dozens": "dozen",
	"pack": "pack", "packs": "pack", "packet": "pack", "packets": "pack",
}

// patternTable is evaluated in order. Within a family the first pattern that
// produces a value wins.
var patternTable = []slotPattern{
	{
		family: familyQuantity,
		re:     regexp.MustCompile(`\b(?:between|from)\s*` + numberExpr + `\s*(?:to|and|-)\s*` + numberExpr + `\s*` + unitExpr + `\b`),
		apply: func(m match, d *draft) bool {
			lo, errLo := parseNumber(m.group(1))
			hi, errHi := parseNumber(m.group(2))
			if errLo != nil || errHi != nil {
				return false
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			d.quantity = &QuantitySlot{Kind: QuantityRange, Min: &lo, Max: &hi, Unit: normalizeUnit(m.foldedGroup(3))}
			return true
		},
	},
	{
		family: familyQuantity,
		re:     regexp.MustCompile(`\b(?:about|around|approximately|approx|roughly|nearly)\s*` + numberExpr + `\s*` + unitExpr + `\b`),
		apply: func(m match, d *draft) bool {
			v, err := parseNumber(m.group(1))
			if err != nil {
				return false
			}
			d.quantity = &QuantitySlot{Kind: QuantityApproximate, Value: &v, Unit: normalizeUnit(m.foldedGroup(2))}
			return true
		},
	},
	{
		family: familyQuantity,
		re:     regexp.MustCompile(`\b` + numberExpr + `\s*` + unitExpr + `\b`),
		apply: func(m match, d *draft) bool {
			v, err := parseNumber(m.group(1))
			if err != nil {
				return false
			}
			d.quantity = &QuantitySlot{Kind: QuantityExact, Value: &v, Unit: normalizeUnit(m.foldedGroup(2))}
			return true
		},
	},
	{
		family: familyName,
		scope:  productClause,
		re:     regexp.MustCompile(`^\S+\s+(.+)$`),
		apply: func(m match, d *draft) bool {
			name := m.group(1)
			folded := m.foldedGroup(1)
			for _, re := range []*regexp.Regexp{leadingLinker, leadingArticle, leadingQuantity, leadingArticle} {
				if loc := re.FindStringIndex(folded); loc != nil {
					name, folded = name[loc[1]:], folded[loc[1]:]
				}
			}
			name = cleanCapture(name)
			if name == "" {
				return false
			}
			d.product.Name = name
			return true
		},
	},
	{
		family: familyCategory,
		re:     regexp.MustCompile(`\b(?:from|in|under)\s+(?:the\s+)?(?:category|section)\s+(.+?)` + captureTail),
		apply: func(m match, d *draft) bool {
			d.product.Category = cleanCapture(m.group(1))
			return d.product.Category != ""
		},
	},
	{
		family: familyCategory,
		re:     regexp.MustCompile(`\b(?:from|in)\s+(?:the\s+)?(\S+)\s+(?:category|section)\b`),
		apply: func(m match, d *draft) bool {
			d.product.Category = cleanCapture(m.group(1))
			return d.product.Category != ""
		},
	},
	{
		family: familyMaxPrice,
		re:     regexp.MustCompile(`\b(?:under|below|less than|within|maximum|max)\s+(?:(?:price|cost)\s+(?:of\s+|is\s+)?(?:rs\.?\s*|inr\s*|₹\s*)?|rs\.?\s*|inr\s*|₹\s*)` + numberExpr),
		apply:  applyMaxPrice,
	},
	{
		family: familyMaxPrice,
		re:     regexp.MustCompile(`\b(?:under|below|less than|within|maximum|max)\s+` + numberExpr + `\s*(?:rs|rupees|inr)\b`),
		apply:  applyMaxPrice,
	},
	{
		family: familyAddress,
		scope:  deliveryClause,
		re:     regexp.MustCompile(`\s(?:to|at)\s+(.+?)` + addressTail),
		apply:  applyAddress,
	},
	{
		// "deliver at 5 pm to ..." leaves the place after "to".
		family: familyAddress,
		scope:  deliveryClause,
		re:     regexp.MustCompile(`\sto\s+(.+?)` + addressTail),
		apply:  applyAddress,
	},
	{
		family: familyTime,
		scope:  deliveryClause,
		re: regexp.MustCompile(`\s(?:(?:by|before)\s+(.+?)|on\s+(` + dayExpr + `.*?)|at\s+((?:` + clockExpr + `)(?:\s+on\s+` + dayExpr + `\w*)?))` +
			`(?:\s+(?:to|at)\s.*)?$`),
		apply: func(m match, d *draft) bool {
			t, end := m.group(1), m.end(1)
			if t == "" {
				t, end = m.group(2), m.end(2)
			}
			if t != "" {
				if loc := trailingClock.FindStringIndex(m.folded[end:]); loc != nil {
					t += m.raw[end : end+loc[1]]
				}
			} else {
				t = m.group(3)
			}
			d.delivery.Time = cleanCapture(t)
			return d.delivery.Time != ""
		},
	},
	{
		family: familyInstructions,
		scope:  instructionsClause,
		re:     regexp.MustCompile(`^(?:delivery|shipping)\s+(?:instructions?|notes?)(?:\s*:\s*|\s+(?:is|are)\s+|\s+)(.+)$`),
		apply: func(m match, d *draft) bool {
			d.delivery.Instructions = cleanCapture(m.group(1))
			return d.delivery.Instructions != ""
		},
	},
	{
		family: familyMethod,
		scope:  paymentClause,
		re:     regexp.MustCompile(`^\S+\s+\S+\s+(.+)$`),
		apply: func(m match, d *draft) bool {
			d.payment.Method = normalizePaymentMethod(cleanCapture(m.foldedGroup(1)))
			return d.payment.Method != ""
		},
	},
	{
		family: familySplit,
		re:     regexp.MustCompile(`\b(?:split|divide)\s+(?:the\s+)?(?:payment|bill|amount)\s+(?:into|by|in)\s+(\d+)(?:\s*(?:parts?|ways?))?`),
		apply: func(m match, d *draft) bool {
			n, err := strconv.Atoi(m.group(1))
			if err != nil || n < 1 {
				return false
			}
			d.payment.SplitCount = n
			return true
		},
	},
}

// applyAddress refuses a capture that opens with a clock time: "at 5 pm" is
// a delivery time, not a place.
func applyAddress(m match, d *draft) bool {
	if leadingClock.MatchString(m.foldedGroup(1)) {
		return false
	}
	d.delivery.Address = cleanCapture(m.group(1))
	return d.delivery.Address != ""
}

func applyMaxPrice(m match, d *draft) bool {
	v, err := parseNumber(m.group(1))
	if err != nil {
		return false
	}
	d.product.MaxPrice = &v
	return true
}

// Extract runs the pattern table over the utterance. It never fails: an
// utterance that matches nothing yields empty slots.
func Extract(utterance string, locale Locale) RawSlots {
	text := normalizeText(utterance)
	folded := foldCase(text)

	var slots RawSlots
	whole := strings.Trim(folded, " .!?,।")
	slots.General = matchGeneral(whole)
	slots.Confirmation = matchConfirmation(whole, locale.Language)

	d := &draft{}
	done := make(map[slotFamily]bool)
	for _, p := range patternTable {
		if done[p.family] {
			continue
		}

		raw, low := text, folded
		if p.scope != nil {
			s, e, ok := p.scope.span(folded)
			if !ok {
				continue
			}
			raw, low = text[s:e], folded[s:e]
		}

		idx := p.re.FindStringSubmatchIndex(low)
		if idx == nil {
			continue
		}
		if p.apply(match{raw: raw, folded: low, idx: idx}, d) {
			done[p.family] = true
		}
	}

	slots.Extracted = d.extracted()
	return slots
}

func (c *clause) span(folded string) (int, int, bool) {
	loc := c.start.FindStringIndex(folded)
	if loc == nil {
		return 0, 0, false
	}
	end := len(folded)
	if stop := c.stop.FindStringIndex(folded[loc[1]:]); stop != nil {
		end = loc[1] + stop[0]
	}
	return loc[0], end, true
}

func (d *draft) extracted() Extracted {
	var e Extracted
	if d.product != (ProductSlot{}) {
		p := d.product
		e.Product = &p
	}
	e.Quantity = d.quantity
	if d.delivery != (DeliverySlot{}) {
		dl := d.delivery
		e.Delivery = &dl
	}
	if d.payment != (PaymentSlot{}) {
		pm := d.payment
		e.Payment = &pm
	}
	return e
}

func matchGeneral(whole string) GeneralType {
	switch {
	case helpPattern.MatchString(whole):
		return GeneralHelp
	case cancelPattern.MatchString(whole):
		return GeneralCancel
	case repeatPattern.MatchString(whole):
		return GeneralRepeat
	}
	return ""
}

func matchConfirmation(whole, language string) ConfirmationType {
	switch {
	case yesPattern.MatchString(whole), defaultLexicon.isExactYes(whole, language):
		return ConfirmYes
	case noPattern.MatchString(whole), defaultLexicon.isExactNo(whole, language):
		return ConfirmNo
	case maybePattern.MatchString(whole):
		return ConfirmMaybe
	}
	return ""
}

// normalizeText applies NFC and collapses whitespace. Combining marks are
// kept: Indic scripts depend on them.
func normalizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// foldCase lower-cases rune by rune without changing byte offsets, so that
// indices found in the folded text address the same span of the original.
func foldCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) != utf8.RuneLen(r) {
			l = r
		}
		b.WriteRune(l)
	}
	return b.String()
}

func cleanCapture(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, " ,.;:!?")
	for _, suffix := range []string{" and", " then"} {
		if len(s) > len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
		}
	}
	return s
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func normalizeUnit(u string) string {
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}

func normalizePaymentMethod(method string) string {
	switch {
	case method == "":
		return ""
	case strings.Contains(method, "cash"):
		return "cash_on_delivery"
	case strings.Contains(method, "upi"), strings.Contains(method, "gpay"),
		strings.Contains(method, "phonepe"), strings.Contains(method, "paytm"):
		return "upi"
	case strings.Contains(method, "card"):
		return "card"
	}
	return method
}
