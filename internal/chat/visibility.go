package chat

// Visibility says which conditional actions the UI should offer.
type Visibility struct {
	DeleteCharacter bool
	ClearChat       bool
	DeleteChat      bool
}

// visibility derives button state from the two facts that drive it. It is
// recomputed after every transition rather than toggled piecemeal.
func visibility(hasCharacter, hasSession bool) Visibility {
	return Visibility{
		DeleteCharacter: hasCharacter,
		ClearChat:       hasCharacter && hasSession,
		DeleteChat:      hasCharacter && hasSession,
	}
}
