package notify

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/chainbell/chainbell/internal/addrbook"
	"github.com/chainbell/chainbell/internal/classify"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-telegram/bot"
)

const weiPerEther = 18

// buildMessage renders a notice as a Telegram MarkdownV2 message. Outgoing
// alerts lead with the action, incoming alerts lead with the transferred
// value and counterparties.
func buildMessage(notice Notice) string {
	name := bot.EscapeMarkdown(notice.Match.Entry.DisplayName)
	hash := bot.EscapeMarkdown(notice.Transaction.Hash)

	if notice.Match.Direction == addrbook.DirectionOutgoing {
		return fmt.Sprintf(
			"⭐ *%s: OUTGOING* 💵\n\n*Transaction Hash:* %s\n\n*Action:* %s",
			name, hash, renderAction(notice.Action),
		)
	}

	return fmt.Sprintf(
		"⭐ *%s: INCOMING* 💵\n*Value:* %s ETH\n*From:* %s\n*To:* %s\n*Transaction Hash:* %s",
		name,
		bot.EscapeMarkdown(weiToEther(string(notice.Transaction.Value))),
		bot.EscapeMarkdown(notice.Transaction.From),
		bot.EscapeMarkdown(notice.Transaction.To),
		hash,
	)
}

// renderAction escapes the action summary for MarkdownV2 and, for swaps with
// a known token page, turns the received token symbol into a link. The swap
// line is assembled term by term so the link lands on the output token even
// when the same symbol text appears earlier in the sentence.
func renderAction(action classify.Action) string {
	if action.Kind == classify.KindSwap && action.Swap.TokenLink != "" {
		return fmt.Sprintf("Swap %s %s for %s [%s](%s)",
			bot.EscapeMarkdown(action.Swap.AmountIn),
			bot.EscapeMarkdown(action.Swap.TokenIn),
			bot.EscapeMarkdown(action.Swap.AmountOut),
			bot.EscapeMarkdown(action.Swap.TokenOut),
			action.Swap.TokenLink,
		)
	}

	return bot.EscapeMarkdown(action.Summary())
}

// weiToEther renders a hex wei amount as a decimal ether string with trailing
// zeros trimmed. Unreadable values render as the raw input.
func weiToEther(value string) string {
	if value == "" || value == "0x" || value == "0x0" {
		return "0"
	}

	wei, err := hexutil.DecodeBig(value)
	if err != nil {
		return value
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(weiPerEther), nil)
	quo, rem := new(big.Int).QuoRem(wei, divisor, new(big.Int))

	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := strings.TrimRight(fmt.Sprintf("%0*s", weiPerEther, rem.String()), "0")
	return fmt.Sprintf("%s.%s", quo, frac)
}
