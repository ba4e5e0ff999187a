package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ReceiveEventMessage]     = (*ReceiveEventCommand)(nil)
	_ gocmd.Commander[RegisterReceiverMessage] = (*RegisterReceiverCommand)(nil)
	_ gocmd.Commander[RotateSecretKeysMessage] = (*RotateSecretKeysCommand)(nil)
	_ gocmd.Commander[PruneClaimsMessage]      = (*PruneClaimsCommand)(nil)
)
