package bluesky

// Wire types for the AT Protocol XRPC endpoints used by the client. Field
// names follow the lexicon's camelCase JSON.

type Session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	Did        string `json:"did"`
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type CreateRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	Record     Record `json:"record"`
}

type Record struct {
	Type      string `json:"$type"`
	Text      string `json:"text"`
	Embed     *Embed `json:"embed,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type Embed struct {
	Type     string        `json:"$type"`
	External EmbedExternal `json:"external"`
}

type EmbedExternal struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumb       *Blob  `json:"thumb,omitempty"`
}

type Blob struct {
	Type     string  `json:"$type"`
	Ref      BlobRef `json:"ref"`
	MimeType string  `json:"mimeType"`
	Size     int64   `json:"size"`
}

type BlobRef struct {
	Link string `json:"$link"`
}

type UploadBlobResponse struct {
	Blob Blob `json:"blob"`
}

type CreateRecordResponse struct {
	URI string `json:"uri"`
	Cid string `json:"cid"`
}
