package brackets

// Tokenize converts text into its token sequence in a single left to right
// pass. Every character is either a bracket or buffered content; content runs
// that are only whitespace are consumed without producing a token.
//
// A closer pairs with the opener on top of the stack only when the two are
// the same shape. Any other closer is reported with an empty partner and
// leaves both the stack and the depth untouched, so openers still waiting on
// the stack can be matched later:
//
//	(a]    ->  "(" unmatched, "a", "]" unmatched
//	([)]   ->  "(" unmatched, "[" <-> "]", ")" unmatched
func Tokenize(text string) Tokens {
	var (
		out   Tokens
		stack []int // indices into out of openers still waiting

		// the depth counter always equals len(stack): openers push, only a
		// successful match pops, and orphan closers change nothing
		depth int

		bufStart = -1
	)

	flush := func(end int) {
		if bufStart < 0 {
			return
		}
		run := text[bufStart:end]
		if !IsBlank(run) {
			out = append(out, Token{
				ID:     contentID(bufStart),
				Kind:   KindContent,
				Text:   run,
				Depth:  depth,
				Offset: bufStart,
			})
		}
		bufStart = -1
	}

	for i, r := range text {
		switch {
		case IsOpen(r):
			flush(i)
			depth++
			out = append(out, Token{
				ID:     openID(i),
				Kind:   KindBracket,
				Char:   string(r),
				Depth:  depth,
				Offset: i,
			})
			stack = append(stack, len(out)-1)

		case IsClose(r):
			flush(i)
			tok := Token{
				ID:     closeID(i),
				Kind:   KindBracket,
				Char:   string(r),
				Depth:  depth,
				Offset: i,
			}
			if n := len(stack); n > 0 && out[stack[n-1]].Shape() == ShapeOf(r) {
				opener := &out[stack[n-1]]
				stack = stack[:n-1]

				tok.Depth = opener.Depth
				tok.Partner = opener.ID
				opener.Partner = tok.ID

				depth = max(0, opener.Depth-1)
			}
			out = append(out, tok)

		default:
			if bufStart < 0 {
				bufStart = i
			}
		}
	}
	flush(len(text))

	return out
}
