// Package service implements the key conversion operations behind the REST API.
package service

import (
	"context"
	"fmt"

	apierrors "github.com/remiblancher/capikey/internal/api/errors"
	"github.com/remiblancher/capikey/internal/api/dto"
	"github.com/remiblancher/capikey/internal/api/middleware"
	"github.com/remiblancher/capikey/internal/logger"
	"github.com/remiblancher/capikey/pkg/audit"
	"github.com/remiblancher/capikey/pkg/blob"
	"github.com/remiblancher/capikey/pkg/rsakey"
	"github.com/remiblancher/capikey/pkg/xmlkey"
)

// KeyService converts keys between blob and XML forms.
type KeyService struct {
	xmlOpts xmlkey.Options
	log     logger.Logger
}

// NewKeyService creates a KeyService. strictXML selects strict decoding
// of incomplete private element sets.
func NewKeyService(strictXML bool, log logger.Logger) *KeyService {
	if log == nil {
		log = logger.Nop()
	}
	return &KeyService{
		xmlOpts: xmlkey.Options{Lenient: !strictXML},
		log:     log,
	}
}

func auditErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apierrors.ErrAudit, err)
}

// ParseBlob decodes a blob and renders it as XML.
func (s *KeyService) ParseBlob(ctx context.Context, data []byte, includePrivate bool) (*dto.BlobParseResponse, error) {
	reqID := middleware.RequestIDFromContext(ctx)

	b, err := blob.Decode(data)
	if err != nil {
		s.log.Debug("blob decode failed", logger.RequestID(reqID), logger.Error(err))
		return nil, err
	}
	if err := audit.LogBlobParsed("", b.Key, reqID, nil); err != nil {
		return nil, auditErr(err)
	}

	x, err := xmlkey.Marshal(b.Key, includePrivate)
	if err != nil {
		return nil, err
	}
	private := includePrivate && rsakey.IsPrivate(b.Key)
	if err := audit.LogKeyExported("", b.Key, "xml", private, reqID); err != nil {
		return nil, auditErr(err)
	}

	s.log.Info("blob parsed",
		logger.RequestID(reqID),
		logger.String("type", b.Header.Type.String()),
		logger.BitLength(b.Key.BitLength()),
		logger.Bool("private_export", private))

	return &dto.BlobParseResponse{
		Type:        b.Header.Type.String(),
		Version:     int(b.Header.Version),
		AlgID:       fmt.Sprintf("0x%08x", b.Header.AlgID),
		Magic:       b.RSAPubKey.MagicString(),
		BitLength:   b.Key.BitLength(),
		Private:     b.IsPrivate(),
		Fingerprint: audit.Fingerprint(b.Key),
		XML:         string(x),
	}, nil
}

// BuildBlob decodes an RSAKeyValue document and encodes it as a blob.
func (s *KeyService) BuildBlob(ctx context.Context, doc string, private bool) (*dto.BlobResponse, error) {
	reqID := middleware.RequestIDFromContext(ctx)

	k, err := xmlkey.UnmarshalWithOptions([]byte(doc), s.xmlOpts)
	if err != nil {
		return nil, err
	}
	data, err := blob.Build(k, private)
	if err != nil {
		return nil, err
	}
	if err := audit.LogBlobBuilt("", k, private, reqID); err != nil {
		return nil, auditErr(err)
	}

	s.log.Info("blob built", logger.RequestID(reqID), logger.BitLength(k.BitLength()), logger.Bool("private", private))

	return &dto.BlobResponse{
		Blob:        dto.NewBase64(data),
		BitLength:   k.BitLength(),
		Private:     private,
		Size:        len(data),
		Fingerprint: audit.Fingerprint(k),
	}, nil
}

// WeakenBlob applies the weak-exponent transform to a private blob.
func (s *KeyService) WeakenBlob(ctx context.Context, data []byte) (*dto.BlobResponse, error) {
	reqID := middleware.RequestIDFromContext(ctx)

	b, err := blob.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := blob.Weaken(b); err != nil {
		return nil, err
	}
	if err := audit.LogKeyWeakened("", b.Key, reqID); err != nil {
		return nil, auditErr(err)
	}

	s.log.Warn("private key weakened", logger.RequestID(reqID), logger.Fingerprint(audit.Fingerprint(b.Key)))

	return &dto.BlobResponse{
		Blob:        dto.NewBase64(b.Bytes()),
		BitLength:   b.Key.BitLength(),
		Private:     true,
		Size:        len(b.Bytes()),
		Fingerprint: audit.Fingerprint(b.Key),
	}, nil
}

// Layout describes the blob regions for bits.
func (s *KeyService) Layout(bits int) (*dto.LayoutResponse, error) {
	l, err := blob.NewLayout(bits)
	if err != nil {
		return nil, err
	}
	resp := &dto.LayoutResponse{
		BitLength:   bits,
		PublicSize:  l.Size(false),
		PrivateSize: l.Size(true),
	}
	for _, r := range l.Regions() {
		resp.Regions = append(resp.Regions, dto.RegionInfo{Name: string(r.Name), Offset: r.Offset, Length: r.Length})
	}
	return resp, nil
}

// RedactXML strips private elements from an RSAKeyValue document.
func (s *KeyService) RedactXML(doc string) (*dto.XMLRedactResponse, error) {
	out, err := xmlkey.Redact([]byte(doc))
	if err != nil {
		return nil, err
	}
	return &dto.XMLRedactResponse{XML: string(out)}, nil
}
