package ledger

import "time"

// rippleEpochOffset ripple 纪元（2000-01-01T00:00:00Z）与 Unix 纪元的固定偏移秒数。
// 所有托管时间窗口的换算必须恰好应用一次该偏移。
const rippleEpochOffset int64 = 946_684_800

// ToRippleTime Unix 时间转 ripple epoch 秒
func ToRippleTime(t time.Time) int64 {
	return t.Unix() - rippleEpochOffset
}

// FromRippleTime ripple epoch 秒转 Unix 时间
func FromRippleTime(sec int64) time.Time {
	return time.Unix(sec+rippleEpochOffset, 0).UTC()
}
