package models

type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceVideo    ResourceType = "video"
	ResourceAudio    ResourceType = "audio"
	ResourceLink     ResourceType = "link"
	ResourceOther    ResourceType = "other"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceDocument, ResourceVideo, ResourceAudio, ResourceLink, ResourceOther:
		return true
	}
	return false
}

type AccessLevel string

const (
	AccessPublic     AccessLevel = "public"
	AccessRegistered AccessLevel = "registered"
	AccessCustomers  AccessLevel = "customers"
	AccessPrivate    AccessLevel = "private"
)

func (a AccessLevel) Valid() bool {
	switch a {
	case AccessPublic, AccessRegistered, AccessCustomers, AccessPrivate:
		return true
	}
	return false
}

type AttachmentLevel string

const (
	AttachmentPreview  AttachmentLevel = "preview"
	AttachmentIncluded AttachmentLevel = "included"
	AttachmentBonus    AttachmentLevel = "bonus"
)

func (a AttachmentLevel) Valid() bool {
	switch a {
	case AttachmentPreview, AttachmentIncluded, AttachmentBonus:
		return true
	}
	return false
}

// Resource is a file or link attached to a service.
type Resource struct {
	ID              string          `bson:"id" json:"id"`
	Title           string          `bson:"title" json:"title"`
	Description     *string         `bson:"description,omitempty" json:"description,omitempty"`
	ResourceType    ResourceType    `bson:"resourceType" json:"resourceType"`
	FileURL         *string         `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	ExternalURL     *string         `bson:"externalUrl,omitempty" json:"externalUrl,omitempty"`
	MediaID         *string         `bson:"mediaId,omitempty" json:"mediaId,omitempty"`
	AccessLevel     AccessLevel     `bson:"accessLevel" json:"accessLevel"`
	IsDownloadable  bool            `bson:"isDownloadable" json:"isDownloadable"`
	AttachmentLevel AttachmentLevel `bson:"attachmentLevel" json:"attachmentLevel"`
	Order           int             `bson:"order" json:"order"`
}
