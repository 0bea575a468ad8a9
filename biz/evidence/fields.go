package evidence

import "github.com/hildam/funeral-claim-go/entity/consts"

// fieldTable 各证据类型需要抽取的字段，顺序即提示词中的顺序
var fieldTable = map[consts.DocumentType][]string{
	consts.DeathCertificate: {
		"deceasedFirstName", "deceasedLastName", "dateOfDeath",
		"placeOfDeath", "causeOfDeath", "dateOfBirth",
		"registrationNumber", "informantName", "informantRelationship",
	},
	consts.FuneralInvoice: {
		"invoiceNumber", "invoiceDate", "totalAmount",
		"serviceProvider", "recipientName", "services",
		"paymentDetails", "funeralDate",
	},
	consts.BenefitLetter: {
		"recipientName", "benefitType", "paymentAmount",
		"paymentFrequency", "letterDate", "referenceNumber",
	},
	consts.RelationshipProof: {
		"personName", "relatedPersonName", "relationshipType",
		"documentType", "issueDate", "issuingAuthority",
	},
	consts.Generic: {
		"names", "dates", "addresses", "amounts",
		"documentType", "referenceNumbers",
	},
}

// FieldsFor 证据类型对应的字段列表，未知类型按 generic 处理
func FieldsFor(docType consts.DocumentType) []string {
	fields, ok := fieldTable[docType]
	if !ok {
		fields = fieldTable[consts.Generic]
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// FormSchema 申请表字段说明，随提示词一起发给模型
const FormSchema = `firstName: Applicant's first name
lastName: Applicant's last name
dateOfBirth: Applicant's date of birth
nationalInsuranceNumber: Applicant's National Insurance number
addressLine1: Address line 1
addressLine2: Address line 2
town: Town or city
county: County
postcode: Postcode
phoneNumber: Phone number
email: Email address
partnerFirstName: Partner's first name
partnerLastName: Partner's last name
partnerDateOfBirth: Partner's date of birth
partnerNationalInsuranceNumber: Partner's National Insurance number
partnerBenefitsReceived: Benefits the partner receives
partnerSavings: Partner's savings
deceasedFirstName: Deceased's first name
deceasedLastName: Deceased's last name
deceasedDateOfBirth: Deceased's date of birth
deceasedDateOfDeath: Deceased's date of death
deceasedPlaceOfDeath: Place of death
deceasedCauseOfDeath: Cause of death
deceasedCertifyingDoctor: Certifying doctor
deceasedCertificateIssued: Certificate issued
relationshipToDeceased: Relationship to deceased
supportingEvidence: Supporting evidence
responsibilityStatement: Responsibility statement
responsibilityDate: Responsibility date
benefitType: Type of benefit
benefitReferenceNumber: Benefit reference number
benefitLetterDate: Date on benefit letter
householdBenefits: Household benefits (array)
incomeSupportDetails: Details about Income Support
disabilityBenefits: Disability benefits (array)
carersAllowance: Carer's Allowance
carersAllowanceDetails: Carer's Allowance details
funeralDirector: Funeral director
funeralEstimateNumber: Funeral estimate number
funeralDateIssued: Date funeral estimate issued
funeralTotalEstimatedCost: Total estimated funeral cost
funeralDescription: Funeral description
funeralContact: Funeral contact
evidence: Evidence documents (array)`
