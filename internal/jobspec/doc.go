// Package jobspec implements the encode-job specification language: the
// compact string syntax that describes one or more desired outputs for a
// source file, and the resolver that turns it into validated output
// configurations.
//
// A specification string holds one segment per requested output, separated
// by ';'. Each segment is a comma-separated list of key=value clauses:
//
//	enc=aom,q=16,s=4,p=anime,g=8;enc=x264,q=18,compat=1
//
// Recognized clauses, tried in this order:
//
//	enc=        video encoder: aom, rav1e, svt, x264, x265, copy
//	q= qp= crf= quantizer (range depends on the encoder)
//	s= speed=   encoder speed preset, 0-10 (AV1 encoders only)
//	p= profile= tuning profile: film, grain, anime, animedetailed,
//	            animegrain, fast
//	g= grain=   photon noise strength, 0-64 (AV1 encoders only)
//	compat=     nonzero enables device-compatibility constraints
//	ext=        container: mkv or mp4
//	bd=         output bit depth: 8 or 10
//	res=        output resolution WxH, both even and at least 64
//	aenc=       audio encoder: copy, aac, flac, opus
//	ab=         audio bitrate in kbps per channel
//	at=         audio track list
//	an=1        enable audio loudness normalization
//	st=         subtitle track list
//
// Track lists are '|'-separated clauses of the form identifier with an
// optional dash-tag suffix: "at=0-e|1.ac3-f". A numeric identifier selects
// a track from the source container; anything else names a sibling file by
// extension substitution and must exist on disk. Tags 'd' or 'e' mark the
// track enabled (default), 'f' marks it forced.
//
// Resolution applies encoder defaults first, regardless of where the enc=
// clause appears in the segment, then folds the remaining clauses into the
// configuration in order. Clauses that do not apply to the selected
// encoder, such as grain for x264, are ignored. Out-of-range values,
// unknown names, and missing track files abort the whole specification
// with a typed error; nothing is resolved partially.
package jobspec
