package domain

// Options carries per-call overrides for encryption and decryption.
//
// A nil Options, or a nil KDFParams, selects DefaultKDFParams. The parameters are not
// written into the envelope; decrypting with different parameters than were used to
// encrypt fails like a wrong password.
type Options struct {
	KDFParams *KDFParams `json:"kdf_params,omitempty"`
}

// Params resolves the effective KDF parameters.
func (o *Options) Params() KDFParams {
	if o == nil {
		return DefaultKDFParams()
	}
	return OrDefault(o.KDFParams)
}
