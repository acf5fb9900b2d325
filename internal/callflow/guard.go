package callflow

// applyAntiReplay suppresses duplicate spoken output. The dispatcher can run
// more than once within a single external turn (initial handler plus a
// delegated-call continuation); without this guard the caller would hear the
// same prompt twice.
//
// The (next-phase, spoken-text) pair is compared against the session's
// cached last-emitted pair: identical pairs are silenced and the cache left
// unchanged; new pairs update the cache. Silent responses never touch the
// cache.
func applyAntiReplay(sess *Session, resp *Response) {
	if resp.Say == nil {
		return
	}
	if sess.LastEmitPhase == resp.NextPhase && sess.LastEmitText == *resp.Say {
		resp.Say = nil
		return
	}
	sess.LastEmitPhase = resp.NextPhase
	sess.LastEmitText = *resp.Say
}
