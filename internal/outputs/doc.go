// Package outputs defines the data model for resolved encode jobs: the
// per-encoder video settings variants, tuning profiles, audio settings,
// track selections, and the Output container that ties one encode of one
// source together.
//
// Values here are produced by the jobspec resolver and consumed by the
// encoder and workflow packages. The model is deliberately closed: encoder
// and profile identities are fixed sets, and code that varies per encoder
// switches exhaustively over the VideoSettings implementations.
package outputs
