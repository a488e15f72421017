package model

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ReportRecord 报告归档行，每次缓存未命中重新计算后写一条
type ReportRecord struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement:true" json:"-"`
	Mint         string          `gorm:"column:mint;not null;index:idx_report_history_mint_created" json:"mint"`
	Symbol       string          `gorm:"column:symbol" json:"symbol"`
	Score        int             `gorm:"column:score;not null" json:"score"`
	Rating       string          `gorm:"column:rating;not null" json:"rating"`
	FailedChecks pq.StringArray  `gorm:"column:failed_checks;type:text[]" json:"failedChecks"`
	LiquidityUsd decimal.Decimal `gorm:"column:liquidity_usd;type:decimal(50,20);not null;default:0" json:"liquidityUsd"`
	Report       datatypes.JSON  `gorm:"column:report" json:"report"`
	CreatedAt    int64           `gorm:"column:created_at;not null;index:idx_report_history_mint_created" json:"createdAt"` // 毫秒
}

func (*ReportRecord) TableName() string {
	return "token_guard.report_history"
}

// NewReportRecord 由报告生成归档行
func NewReportRecord(report *SafetyReport, at time.Time) (ReportRecord, error) {
	body, err := sonic.Marshal(report)
	if err != nil {
		return ReportRecord{}, err
	}

	failed := pq.StringArray{}
	for _, c := range report.Checks() {
		if c.Result.Status == StatusFail {
			failed = append(failed, c.Name)
		}
	}

	liquidity := decimal.Zero
	if report.DexScreenerPair.HasLiquidity() {
		liquidity = *report.DexScreenerPair.LiquidityUsd
	}

	return ReportRecord{
		Mint:         report.Mint.String(),
		Symbol:       report.TokenInfo.Symbol,
		Score:        report.Score.Value,
		Rating:       string(report.Score.Rating),
		FailedChecks: failed,
		LiquidityUsd: liquidity,
		Report:       datatypes.JSON(body),
		CreatedAt:    at.UnixMilli(),
	}, nil
}
