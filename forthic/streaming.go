package forthic

// StartStream resets the incremental-execution cursor to the beginning,
// entering streaming mode (component J): repeated StreamingRun calls feed in
// progressively longer prefixes of the same logical source, executing only
// the tokens that have newly become safe to run.
func (i *Interpreter) StartStream() {
	i.streamingCursor = 0
	i.streamingActive = true
}

// EndStream leaves streaming mode. Any remaining, not-yet-safe trailing
// input is simply dropped -- callers that need it reported should pass
// done=true to the final StreamingRun instead.
func (i *Interpreter) EndStream() {
	i.streamingActive = false
	i.streamingCursor = 0
}

// StreamingRun tokenizes codePrefix -- the full logical source accumulated
// by the caller so far, not just a new chunk -- from the beginning, and
// executes every token whose start offset is at or past the cursor left by
// the previous call. A trailing string literal that is still open is held
// back rather than treated as an error, unless done is true, in which case
// it becomes an UnterminatedStringError.
//
// Returns the source text of every token executed during this call
// (START-LOG's own invocation is suppressed from this text, since it is a
// streaming control word rather than part of the logged program), and the
// delta: whatever trailing text was not yet safe to execute.
func (i *Interpreter) StreamingRun(codePrefix string, done bool) (executedText string, delta string, err error) {
	if !i.streamingActive {
		i.StartStream()
	}

	tokenizer := NewTokenizer(codePrefix, nil, !done)
	i.tokenizerStack = append(i.tokenizerStack, tokenizer)
	defer func() {
		i.tokenizerStack = i.tokenizerStack[:len(i.tokenizerStack)-1]
	}()

	var executed []byte
	newStop := i.streamingCursor

	for {
		token, terr := tokenizer.NextToken()
		if terr != nil {
			return string(executed), tokenizer.GetStringDelta(), terr
		}
		if token == nil {
			// Tokenizer is waiting on more input (open string, not done yet:
			// done=true always supplies a terminator-or-error, never nil).
			// Tokens executed before the open string stay behind the cursor.
			i.streamingCursor = newStop
			return string(executed), tokenizer.GetStringDelta(), nil
		}
		if token.Type == TOKEN_EOS {
			newStop = tokenizer.SafePrefixLen()
			break
		}

		start := 0
		if token.Location != nil {
			start = token.Location.StartPos
		}
		if start < i.streamingCursor {
			// Already executed on a previous call.
			i.previousToken = token
			continue
		}

		if token.Type != TOKEN_WORD || token.String != "START-LOG" {
			executed = append(executed, token.String...)
			executed = append(executed, ' ')
		}

		if herr := i.handleToken(token); herr != nil {
			return string(executed), tokenizer.GetStringDelta(), herr
		}

		i.previousToken = token
		newStop = tokenizer.SafePrefixLen()
	}

	i.streamingCursor = newStop
	if newStop < len(codePrefix) {
		delta = codePrefix[newStop:]
	}
	if done {
		i.EndStream()
	}
	return string(executed), delta, nil
}
