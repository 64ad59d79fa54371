package usecase

import (
	"context"
	"runtime"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	cryptoService "github.com/allisson/compvault/internal/crypto/service"
	"github.com/allisson/compvault/internal/errors"
)

// encryptionUseCase implements EncryptionUseCase.
type encryptionUseCase struct {
	aeadManager cryptoService.AEADManager
	keyCache    KeyCache
	deleter     RecordDeleter
}

// EncryptData derives a key for a fresh salt and seals plaintext with AES-256-GCM.
func (e *encryptionUseCase) EncryptData(
	ctx context.Context,
	plaintext, password string,
	opts *cryptoDomain.Options,
) (*cryptoDomain.EncryptedEnvelope, error) {
	if plaintext == "" {
		return nil, cryptoDomain.ErrEmptyData
	}
	if utf8.RuneCountInString(password) < cryptoDomain.MinPasswordLength {
		return nil, cryptoDomain.ErrWeakPassword
	}

	params := opts.Params()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	salt, err := cryptoService.GenerateSalt(cryptoDomain.SaltSize)
	if err != nil {
		return nil, errors.Wrap(cryptoDomain.ErrEncryptionFailed, err.Error())
	}

	pw := []byte(password)
	defer cryptoDomain.Zero(pw)

	key, err := e.keyCache.GetOrDeriveKey(ctx, pw, salt, params)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	cipher, err := e.aeadManager.CreateCipher(key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}

	ciphertext, iv, err := cipher.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.EncryptedEnvelope{
		EncryptedData: cryptoService.Base64Encode(ciphertext),
		IV:            cryptoService.Base64Encode(iv),
		Salt:          cryptoService.Base64Encode(salt),
		Algorithm:     cryptoDomain.AESGCM,
		KeyDerivation: cryptoDomain.Argon2id,
	}, nil
}

// DecryptData runs the per-call state machine Validating -> DerivingKey -> Decrypting.
// A failed result records the step it failed in.
func (e *encryptionUseCase) DecryptData(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
	password string,
	opts *cryptoDomain.Options,
) cryptoDomain.DecryptionResult {
	decoded, failed := decodeEnvelope(envelope)
	if failed != nil {
		return *failed
	}
	if password == "" {
		return emptyPasswordFailure()
	}

	pw := []byte(password)
	defer cryptoDomain.Zero(pw)

	key, err := e.keyCache.GetOrDeriveKey(ctx, pw, decoded.Salt, opts.Params())
	if err != nil {
		return derivationFailure(err)
	}
	defer cryptoDomain.Zero(key)

	return e.decryptWithKey(key, decoded)
}

// ChangePassword re-encrypts envelope under newPassword.
func (e *encryptionUseCase) ChangePassword(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
	oldPassword, newPassword string,
	opts *cryptoDomain.Options,
) (*cryptoDomain.EncryptedEnvelope, error) {
	if utf8.RuneCountInString(newPassword) < cryptoDomain.MinPasswordLength {
		return nil, cryptoDomain.ErrWeakPassword
	}

	result := e.DecryptData(ctx, envelope, oldPassword, opts)
	if !result.Success {
		return nil, resultError(result)
	}

	// Keys derived from the old password must not outlive the change.
	defer e.keyCache.InvalidateAll()

	return e.EncryptData(ctx, result.Data, newPassword, opts)
}

// BatchDecryptData validates every envelope, derives one key per distinct salt and
// decrypts the valid envelopes concurrently. The batch holds its own copies of the keys,
// so a batch larger than the cache never derives the same salt twice.
func (e *encryptionUseCase) BatchDecryptData(
	ctx context.Context,
	envelopes []*cryptoDomain.EncryptedEnvelope,
	password string,
	opts *cryptoDomain.Options,
) []cryptoDomain.DecryptionResult {
	results := make([]cryptoDomain.DecryptionResult, len(envelopes))
	decoded := make([]*cryptoDomain.DecodedEnvelope, len(envelopes))

	var salts [][]byte
	for i, envelope := range envelopes {
		d, failed := decodeEnvelope(envelope)
		if failed != nil {
			results[i] = *failed
			continue
		}
		if password == "" {
			results[i] = emptyPasswordFailure()
			continue
		}
		decoded[i] = d
		salts = append(salts, d.Salt)
	}
	if len(salts) == 0 {
		return results
	}

	pw := []byte(password)
	defer cryptoDomain.Zero(pw)

	keys := e.keyCache.DeriveKeys(ctx, pw, salts, opts.Params())
	defer func() {
		for _, k := range keys {
			cryptoDomain.Zero(k.Key)
		}
	}()

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, d := range decoded {
		if d == nil {
			continue
		}
		derived, ok := keys[string(d.Salt)]
		if !ok {
			results[i] = derivationFailure(cryptoDomain.ErrKeyDerivationFailed)
			continue
		}
		if derived.Err != nil {
			results[i] = derivationFailure(derived.Err)
			continue
		}
		g.Go(func() error {
			results[i] = e.decryptWithKey(derived.Key, d)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ValidatePassword scores password strength.
func (e *encryptionUseCase) ValidatePassword(password string) cryptoDomain.PasswordStrength {
	return cryptoService.EvaluatePassword(password)
}

// AuditAndCleanupCorruptedRecords decrypts every record and deletes corrupted ones
// within the failure tolerance.
//
// Only data problems count as corruption. Records that failed because no key could be
// derived are reported but never deleted. When not a single record decrypts the
// password is more likely wrong than the data, so nothing is deleted either.
func (e *encryptionUseCase) AuditAndCleanupCorruptedRecords(
	ctx context.Context,
	records []cryptoDomain.StoredEnvelope,
	password string,
	opts cryptoDomain.AuditOptions,
) (*cryptoDomain.AuditReport, error) {
	if password == "" {
		return nil, cryptoDomain.ErrInvalidPassword
	}

	envelopes := make([]*cryptoDomain.EncryptedEnvelope, len(records))
	for i := range records {
		envelopes[i] = &records[i].Envelope
	}

	results := e.BatchDecryptData(ctx, envelopes, password, &cryptoDomain.Options{KDFParams: opts.KDFParams})

	report := &cryptoDomain.AuditReport{
		Total:    len(records),
		Failures: []cryptoDomain.AuditFailure{},
		Deleted:  []uuid.UUID{},
		DryRun:   opts.DryRun,
	}

	var corrupted []cryptoDomain.AuditFailure
	for i, result := range results {
		if result.Success {
			report.Succeeded++
			continue
		}

		failure := cryptoDomain.AuditFailure{
			RecordID: records[i].ID,
			Reason:   result.Reason,
			Error:    result.Error,
		}
		report.Failed++
		report.Failures = append(report.Failures, failure)
		if isCorruption(result.Reason) {
			corrupted = append(corrupted, failure)
		}
	}

	switch {
	case report.Failed == 0:
		return report, nil
	case report.Failed > max(opts.MaxFailures, 0):
		report.ToleranceExceeded = true
		report.SkipReason = cryptoDomain.SkipToleranceExceeded
		return report, nil
	case report.Succeeded == 0:
		report.SkipReason = cryptoDomain.SkipNoRecordDecrypted
		return report, nil
	case opts.DryRun:
		report.SkipReason = cryptoDomain.SkipDryRun
		return report, nil
	case len(corrupted) == 0:
		return report, nil
	}
	if e.deleter == nil {
		return report, errors.Wrap(errors.ErrForbidden, "no record deleter configured")
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, failure := range corrupted {
		if err := e.deleter.DeleteRecord(ctx, failure.RecordID); err != nil {
			report.DeleteErrors = append(report.DeleteErrors, cryptoDomain.AuditFailure{
				RecordID: failure.RecordID,
				Reason:   failure.Reason,
				Error:    err.Error(),
			})
			continue
		}
		report.Deleted = append(report.Deleted, failure.RecordID)
	}

	return report, nil
}

// decryptWithKey is the Decrypting step. Every failure maps to the generic message.
func (e *encryptionUseCase) decryptWithKey(
	key []byte,
	decoded *cryptoDomain.DecodedEnvelope,
) cryptoDomain.DecryptionResult {
	failed := cryptoDomain.FailedWith(cryptoDomain.ReasonDecryptionFailed, "").
		At(cryptoDomain.StateDecrypting)

	cipher, err := e.aeadManager.CreateCipher(key, cryptoDomain.AESGCM)
	if err != nil {
		return failed
	}

	plaintext, err := cipher.Decrypt(decoded.Ciphertext, decoded.IV, nil)
	if err != nil {
		return failed
	}
	defer cryptoDomain.Zero(plaintext)

	if !utf8.Valid(plaintext) {
		return failed
	}
	return cryptoDomain.SucceededWith(string(plaintext))
}

// NewEncryptionUseCase creates a new EncryptionUseCase. deleter may be nil when the
// caller never runs destructive audits.
func NewEncryptionUseCase(
	aeadManager cryptoService.AEADManager,
	keyCache KeyCache,
	deleter RecordDeleter,
) EncryptionUseCase {
	return &encryptionUseCase{
		aeadManager: aeadManager,
		keyCache:    keyCache,
		deleter:     deleter,
	}
}
