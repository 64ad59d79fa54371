package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoService "github.com/allisson/compvault/internal/crypto/service"
)

// ProbeReport describes the key derivation capability of this host.
type ProbeReport struct {
	Primary            string                 `json:"primary"`
	PrimaryAvailable   bool                   `json:"primary_available"`
	ProbeError         string                 `json:"probe_error,omitempty"`
	Params             cryptoDomain.KDFParams `json:"params"`
	DerivationTime     string                 `json:"derivation_time,omitempty"`
	FallbackIterations int                    `json:"fallback_iterations"`
}

// RunProbeKDF probes the primary deriver and times one derivation with the configured
// parameters, so operators can size KDF_MEMORY_KIB and KDF_ITERATIONS for the host.
func RunProbeKDF(
	ctx context.Context,
	primary cryptoService.KeyDeriver,
	params cryptoDomain.KDFParams,
	writer io.Writer,
	format string,
) error {
	report := ProbeReport{
		Primary:            primary.Name(),
		Params:             params,
		FallbackIterations: cryptoService.FallbackIterations(params),
	}

	if err := cryptoService.ProbeKeyDeriver(ctx, primary); err != nil {
		report.ProbeError = err.Error()
	} else {
		report.PrimaryAvailable = true

		salt := bytes.Repeat([]byte{0x42}, cryptoDomain.MinSaltSize)
		start := time.Now()
		key, err := primary.DeriveKey(ctx, []byte("compvault-probe"), salt, params)
		if err != nil {
			report.PrimaryAvailable = false
			report.ProbeError = err.Error()
		} else {
			cryptoDomain.Zero(key)
			report.DerivationTime = time.Since(start).Round(time.Millisecond).String()
		}
	}

	if format == "json" {
		return writeJSON(writer, report)
	}

	if report.PrimaryAvailable {
		_, _ = fmt.Fprintf(writer, "%s available, one derivation took %s\n", report.Primary, report.DerivationTime)
	} else {
		_, _ = fmt.Fprintf(writer, "%s unavailable: %s\n", report.Primary, report.ProbeError)
	}
	_, _ = fmt.Fprintf(writer, "PBKDF2 fallback would use %d iterations\n", report.FallbackIterations)
	return nil
}
