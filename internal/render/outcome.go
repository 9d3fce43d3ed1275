package render

// stageOutcome records whether an optional pipeline stage took effect or
// was skipped. Optional stages never surface errors; the capture is usable
// without them.
type stageOutcome struct {
	ok     bool
	reason string
}

func applied() stageOutcome {
	return stageOutcome{ok: true}
}

func skipped(reason string) stageOutcome {
	return stageOutcome{reason: reason}
}

// Applied reports whether the stage took effect.
func (o stageOutcome) Applied() bool { return o.ok }

// Reason returns why the stage was skipped, empty when applied.
func (o stageOutcome) Reason() string { return o.reason }
