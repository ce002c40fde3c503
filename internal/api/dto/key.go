package dto

// BlobParseRequest represents a key blob decoding request.
type BlobParseRequest struct {
	// Blob is the PUBLICKEYBLOB or PRIVATEKEYBLOB.
	Blob BinaryData `json:"blob"`

	// IncludePrivate requests private elements in the returned XML.
	IncludePrivate bool `json:"include_private,omitempty"`
}

// BlobParseResponse describes a decoded blob.
type BlobParseResponse struct {
	Type        string `json:"type"`
	Version     int    `json:"version"`
	AlgID       string `json:"alg_id"`
	Magic       string `json:"magic"`
	BitLength   int    `json:"bit_length"`
	Private     bool   `json:"private"`
	Fingerprint string `json:"fingerprint"`

	// XML is the RSAKeyValue element.
	XML string `json:"xml"`
}

// BlobBuildRequest represents a blob encoding request.
type BlobBuildRequest struct {
	// XML is the RSAKeyValue element to encode.
	XML string `json:"xml"`

	// Private requests a PRIVATEKEYBLOB.
	Private bool `json:"private,omitempty"`
}

// BlobResponse carries an encoded blob.
type BlobResponse struct {
	Blob        BinaryData `json:"blob"`
	BitLength   int        `json:"bit_length"`
	Private     bool       `json:"private"`
	Size        int        `json:"size"`
	Fingerprint string     `json:"fingerprint"`
}

// BlobWeakenRequest represents a weak-exponent transform request.
type BlobWeakenRequest struct {
	// Blob is the PRIVATEKEYBLOB to transform.
	Blob BinaryData `json:"blob"`
}

// RegionInfo is one region of a blob layout.
type RegionInfo struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// LayoutResponse describes the blob layout for one bit length.
type LayoutResponse struct {
	BitLength   int          `json:"bit_length"`
	PublicSize  int          `json:"public_size"`
	PrivateSize int          `json:"private_size"`
	Regions     []RegionInfo `json:"regions"`
}

// XMLRedactRequest carries an RSAKeyValue document to strip.
type XMLRedactRequest struct {
	XML string `json:"xml"`
}

// XMLRedactResponse carries the public-only document.
type XMLRedactResponse struct {
	XML string `json:"xml"`
}
