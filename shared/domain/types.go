package domain

type (
	AttachmentId = string // uuid, generated before any network call

	PurchaseId = int64
	LineItemId = int64
	RoomId     = int64
)

// FileType is the caller's declared intent for an upload.
// It is independent of the MIME classification used by the pipeline.
type FileType string

const (
	FileTypeInvoice  FileType = "invoice"
	FileTypeReceipt  FileType = "receipt"
	FileTypePhoto    FileType = "photo"
	FileTypeDocument FileType = "document"
)

func (t FileType) Valid() bool {
	switch t {
	case FileTypeInvoice, FileTypeReceipt, FileTypePhoto, FileTypeDocument:
		return true
	}
	return false
}

// HouseDocumentType categorizes uploads on the house-document path.
type HouseDocumentType string

const (
	DocPurchaseAgreement HouseDocumentType = "purchase_agreement"
	DocUtilityContract   HouseDocumentType = "utility_contract"
	DocInsurance         HouseDocumentType = "insurance"
	DocBuildingPermit    HouseDocumentType = "building_permit"
	DocTaxDocument       HouseDocumentType = "tax_document"
	DocWarranty          HouseDocumentType = "warranty"
	DocManual            HouseDocumentType = "manual"
	DocOther             HouseDocumentType = "other"
)

func (t HouseDocumentType) Valid() bool {
	switch t {
	case DocPurchaseAgreement, DocUtilityContract, DocInsurance, DocBuildingPermit,
		DocTaxDocument, DocWarranty, DocManual, DocOther:
		return true
	}
	return false
}
