// Package extraction owns the in-page agent and the host-side helpers that
// interpret what it reports.
//
// The agent is a static script embedded in the binary. It is parameterised
// by a frozen configuration object defined by a second, generated init
// script (see Bootstrap); no configuration value is ever interpolated into
// executable code. Messages posted through the host binding are decoded by
// ParseMessage.
//
// The package also mirrors two agent behaviours on the host so they can be
// applied to HTML snapshots: label inference (LabelInferrer) and the
// forced-capture validation gate (Gate).
package extraction
