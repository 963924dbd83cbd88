package metrics

// Attribute keys shared by metric instruments.
const (
	AttrProvider = "provider"
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrOutcome  = "outcome"
)
