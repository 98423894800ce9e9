package limits

import (
	"fmt"

	"github.com/Memehub-GmbH-Co-KG/MemeHub-Limits/internal/domain"
)

const (
	rewardText = "You got a reward token!"
	revokeText = "One reward token has been taken away from you."
)

// tokenPhrase renders a token amount for user-facing messages:
// "no daily tokens", "one reward token", "3 daily tokens".
func tokenPhrase(amount int64, kind string) string {
	if amount < 1 {
		return fmt.Sprintf("no %s tokens", kind)
	}
	if amount == 1 {
		return fmt.Sprintf("one %s token", kind)
	}
	return fmt.Sprintf("%d %s tokens", amount, kind)
}

func chargeText(result domain.ChargeResult) string {
	return fmt.Sprintf("You have %s and %s left.",
		tokenPhrase(result.FreePostsRemaining, "daily"),
		tokenPhrase(result.TokenBalance, "reward"),
	)
}

func issueText(amount int64) string {
	if amount > 0 {
		return fmt.Sprintf("You got %s!", tokenPhrase(amount, "reward"))
	}
	return fmt.Sprintf("You lost %s.", tokenPhrase(-amount, "reward"))
}
