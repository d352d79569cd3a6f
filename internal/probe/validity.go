package probe

// determineValidity applies the three invalidity rules: a top-level probe
// error, both primary streams disqualified, or missing codec parameters.
// A stream is disqualified when it is absent or reported unsupported.
func determineValidity(md *Metadata, stderr string, video *VideoStream, audio *AudioStream, diag Diagnostics) bool {
	if md.Error != nil {
		return false
	}

	unsupported := diag.UnsupportedStreams(stderr)
	disqualified := func(present bool, index int) bool {
		if !present {
			return true
		}
		_, bad := unsupported[index]
		return bad
	}

	videoOut := disqualified(video != nil, indexOf(video))
	audioOut := disqualified(audio != nil, audioIndexOf(audio))
	if videoOut && audioOut {
		return false
	}

	return !diag.CodecParamsMissing(stderr)
}

func indexOf(v *VideoStream) int {
	if v == nil {
		return -1
	}
	return v.Index
}

func audioIndexOf(a *AudioStream) int {
	if a == nil {
		return -1
	}
	return a.Index
}
