// Package i18n holds the static translation dictionary and the formatting
// helpers the view models use. English is the base language; Vietnamese
// entries override it key by key, and unknown keys fall back to the caller's
// default string.
package i18n

import "strings"

const (
	LangEN = "en"
	LangVI = "vi"
)

// Normalize maps any stored language value onto a supported language.
func Normalize(lang string) string {
	if strings.EqualFold(lang, LangVI) {
		return LangVI
	}
	return LangEN
}

// vi is the Vietnamese dictionary. Keys absent here render the English
// fallback passed at the call site.
var vi = map[string]string{
	"common.general":              "Chung",
	"common.invoice":              "Hóa đơn",
	"common.monthsShort":          "{count} tháng",
	"common.onTrack":              "Đúng tiến độ",
	"common.review":               "Xem xét",
	"common.owner":                "Chủ sở hữu",
	"common.actionFailed":         "Thao tác thất bại",
	"common.amountGreaterThanZero": "Số tiền phải lớn hơn 0.",

	"time.minutes": "{count} phút trước",
	"time.hours":   "{count} giờ trước",
	"time.days":    "{count} ngày trước",
	"time.hoursSpan": "{count} giờ",

	"pipeline.escrowReady":   "Sẵn sàng ký quỹ",
	"pipeline.emergencyLane": "Làn khẩn cấp",
	"pipeline.fundedPercent": "Đã huy động {percent}%",

	"home.stats.capitalDeployed": "Vốn đã giải ngân",
	"home.stats.activeSmes":      "SME đang hoạt động",
	"home.stats.netYield":        "Lợi suất ròng",
	"home.stats.invoicesListed":  "{count} hóa đơn đang niêm yết",
	"home.snapshot.avgFundingTime": "Thời gian gọi vốn TB",
	"home.snapshot.topSectorDemand": "Ngành có nhu cầu cao nhất",
	"home.snapshot.investorDemand":  "Nhu cầu nhà đầu tư",

	"admin.stats.activeSmes":     "SME đang hoạt động",
	"admin.stats.fundedInvoices": "Hóa đơn đã huy động",
	"admin.stats.avgApr":         "APR trung bình",
	"admin.stats.atRisk":         "Có rủi ro",
	"admin.tierLabel":            "Hạng {tier}",
	"admin.riskTierRequired":     "Hạng rủi ro là bắt buộc.",
	"admin.aprRequired":          "APR phải lớn hơn 0.",
	"admin.invoiceNotFunded":     "Hóa đơn chưa được huy động.",

	"investor.stats.availableCapital": "Vốn khả dụng",
	"investor.stats.activeDeals":      "Thương vụ đang hoạt động",
	"investor.stats.expectedYield":    "Lợi suất kỳ vọng",
	"investor.stats.impactScore":      "Điểm tác động",
	"investor.fundAmountError":        "Số tiền phải lớn hơn 0.",
	"investor.aprError":               "APR phải lớn hơn 0.",
	"investor.termError":              "Kỳ hạn phải lớn hơn 0.",

	"portfolio.totalInvested": "Tổng đã đầu tư",
	"portfolio.totalReturned": "Tổng đã hoàn trả",
	"portfolio.pendingPayout": "Chờ chi trả",

	"sme.stats.fundingTarget": "Mục tiêu huy động",
	"sme.stats.committed":     "Đã cam kết",
	"sme.stats.offersPending": "Đề nghị đang chờ",
	"sme.stats.averageApr":    "APR trung bình",
	"sme.completePercent":     "Hoàn thành {percent}%",
	"sme.errorTitleNumber":    "Tiêu đề và số hóa đơn là bắt buộc.",
	"sme.errorAmount":         "Số tiền phải lớn hơn 0.",
	"sme.errorTerm":           "Kỳ hạn phải lớn hơn 0.",
	"sme.errorAprRange":       "APR phải từ 1% đến 20% mỗi năm.",
	"sme.errorDueDate":        "Ngày đáo hạn là bắt buộc.",
	"sme.errorTarget":         "Mục tiêu huy động phải lớn hơn 0.",
	"sme.errorTargetMin":      "Mục tiêu huy động phải tối thiểu bằng số tiền hóa đơn.",
	"sme.alreadySubmitted":    "Hóa đơn đã được gửi hoặc đã duyệt.",

	"status.high":   "Cao",
	"status.medium": "Trung bình",
	"status.low":    "Thấp",
}

// statusVI maps backend status literals to their Vietnamese display form.
var statusVI = map[string]string{
	"DRAFT":          "Nháp",
	"SUBMITTED":      "Đã gửi",
	"APPROVED":       "Đã duyệt",
	"FUNDED":         "Đã huy động",
	"PARTIALLY_PAID": "Đã trả một phần",
	"PAID":           "Đã thanh toán",
	"CONFIRMED":      "Đã xác nhận",
	"PENDING":        "Đang chờ",
	"REVIEW":         "Xem xét",
	"ON_TRACK":       "Đúng tiến độ",
}

// Params substitutes into {name} placeholders.
type Params map[string]string

// T translates key for lang, rendering fallback when no entry exists.
// Placeholders without a matching param are left intact.
func T(lang, key, fallback string, params Params) string {
	template := fallback
	if Normalize(lang) == LangVI {
		if entry, ok := vi[key]; ok {
			template = entry
		}
	}
	return interpolate(template, params)
}

func interpolate(template string, params Params) string {
	if len(params) == 0 {
		return template
	}
	out := template
	for name, value := range params {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// Translator binds a language so call sites read like the UI layer's t().
type Translator struct {
	lang string
}

// For returns a Translator for lang.
func For(lang string) Translator {
	return Translator{lang: Normalize(lang)}
}

// Lang returns the bound language.
func (tr Translator) Lang() string { return tr.lang }

// T translates key with an English fallback.
func (tr Translator) T(key, fallback string, params Params) string {
	return T(tr.lang, key, fallback, params)
}
