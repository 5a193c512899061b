package wallet

import (
	"fmt"

	"github.com/neboloop/walletpilot/internal/browser"
)

// Selector tables for the wallet extension's screens. Grouped per screen the
// way the extension's UI is organized.

var sel = browser.Sel

var welcomePage = struct {
	App           browser.Target
	ConfirmButton browser.Target
}{
	App:           sel("#app-content .app"),
	ConfirmButton: sel(".welcome-page button"),
}

var metametricsPage = struct {
	OptOutButton browser.Target
}{
	OptOutButton: sel(`[data-testid="page-container-footer-cancel"]`),
}

var firstTimeFlowPage = struct {
	ImportWalletButton browser.Target
	CreateWalletButton browser.Target
}{
	ImportWalletButton: sel(`[data-testid="import-wallet-button"]`),
	CreateWalletButton: sel(`[data-testid="create-wallet-button"]`),
}

var importPage = struct {
	WordCountDropdown    browser.Target
	PasswordInput        browser.Target
	ConfirmPasswordInput browser.Target
	TermsCheckbox        browser.Target
	ImportButton         browser.Target
}{
	WordCountDropdown:    sel(".import-srp__number-of-words-dropdown"),
	PasswordInput:        sel("#password"),
	ConfirmPasswordInput: sel("#confirm-password"),
	TermsCheckbox:        sel(".first-time-flow__terms"),
	ImportButton:         sel(".create-new-vault__submit-button"),
}

func secretWordInput(index int) browser.Target {
	return sel(fmt.Sprintf("#import-srp__srp-word-%d", index))
}

func wordCountOption(n int) browser.Target {
	return sel(".dropdown__select option").WithText(fmt.Sprintf("I have a %d-word phrase", n))
}

var createPage = struct {
	NewPasswordInput     browser.Target
	ConfirmPasswordInput browser.Target
	TermsCheckbox        browser.Target
	CreateButton         browser.Target
}{
	NewPasswordInput:     sel("#create-password"),
	ConfirmPasswordInput: sel("#confirm-password"),
	TermsCheckbox:        sel(".first-time-flow__checkbox"),
	CreateButton:         sel(".first-time-flow__form button"),
}

var secureWalletPage = struct {
	NextButton browser.Target
}{
	NextButton: sel(".seed-phrase-intro__left button"),
}

var revealSeedPage = struct {
	RemindLaterButton browser.Target
}{
	RemindLaterButton: sel(".reveal-seed-phrase__buttons button.first-time-flow__button"),
}

var endOfFlowPage = struct {
	AllDoneButton browser.Target
}{
	AllDoneButton: sel(".end-of-flow button"),
}

var unlockPage = struct {
	PasswordInput browser.Target
	UnlockButton  browser.Target
}{
	PasswordInput: sel("#password"),
	UnlockButton:  sel(".unlock-page button"),
}

var mainPage = struct {
	WalletOverview browser.Target

	PopupContainer  browser.Target
	PopupBackground browser.Target
	TooltipClose    browser.Target
	ActionableClose browser.Target

	NetworkButton        browser.Target
	NetworkName          browser.Target
	NetworkMenuItem      browser.Target
	MainnetNetworkItem   browser.Target
	GoerliNetworkItem    browser.Target
	SepoliaNetworkItem   browser.Target
	LocalhostNetworkItem browser.Target

	AccountMenuButton browser.Target
	AccountName       browser.Target

	OptionsMenuButton    browser.Target
	AccountDetailsButton browser.Target
	ConnectedSitesButton browser.Target

	ConnectedSitesModal browser.Target
	ConnectedSitesClose browser.Target
	DisconnectLabel     browser.Target
	DisconnectButton    browser.Target

	WalletAddressInput browser.Target
	AccountModalClose  browser.Target

	ImportAccountInput  browser.Target
	ImportAccountButton browser.Target

	CreateAccountInput  browser.Target
	CreateAccountButton browser.Target
}{
	WalletOverview: sel(".wallet-overview"),

	PopupContainer:  sel(".popover-container"),
	PopupBackground: sel(".popover-bg"),
	TooltipClose:    sel(".tippy-tooltip-content .fas.fa-times"),
	ActionableClose: sel(".actionable-message__action--rounded"),

	NetworkButton:        sel(".network-display"),
	NetworkName:          sel(".network-display .typography"),
	NetworkMenuItem:      sel(".dropdown-menu-item"),
	MainnetNetworkItem:   sel(`[data-testid="mainnet-network-item"]`),
	GoerliNetworkItem:    sel(`[data-testid="goerli-network-item"]`),
	SepoliaNetworkItem:   sel(`[data-testid="sepolia-network-item"]`),
	LocalhostNetworkItem: sel(`[data-testid="Localhost 8545-network-item"]`),

	AccountMenuButton: sel(".account-menu__icon"),
	AccountName:       sel(".account-menu__name"),

	OptionsMenuButton:    sel(`[data-testid="account-options-menu-button"]`),
	AccountDetailsButton: sel(`[data-testid="account-options-menu__account-details"]`),
	ConnectedSitesButton: sel(`[data-testid="account-options-menu__connected-sites"]`),

	ConnectedSitesModal: sel(".connected-sites"),
	ConnectedSitesClose: sel(".connected-sites .popover-header__button"),
	DisconnectLabel:     sel(".connected-sites-list__content-row-link-button"),
	DisconnectButton:    sel(".disconnect-all-modal .button.btn-primary"),

	WalletAddressInput: sel(".account-modal .qr-code__address"),
	AccountModalClose:  sel(".account-modal__close"),

	ImportAccountInput:  sel("#private-key-box"),
	ImportAccountButton: sel(".new-account-import-form__buttons button.btn-primary"),

	CreateAccountInput:  sel(".new-account-create-form input"),
	CreateAccountButton: sel(".new-account-create-form button.btn-primary"),
}

func accountButton(number int) browser.Target {
	return sel(fmt.Sprintf(".account-menu__accounts > div:nth-child(%d)", number))
}

var settingsPage = struct {
	CloseButton browser.Target
}{
	CloseButton: sel(".settings-page__close-button"),
}

var advancedPage = struct {
	ResetAccountButton browser.Target

	AdvancedGasControlOn, AdvancedGasControlOff         browser.Target
	EnhancedTokenDetectionOn, EnhancedTokenDetectionOff browser.Target
	ShowHexDataOn, ShowHexDataOff                       browser.Target
	TestnetConversionOn, TestnetConversionOff           browser.Target
	ShowTestnetNetworksOn, ShowTestnetNetworksOff       browser.Target
	CustomNonceOn, CustomNonceOff                       browser.Target
	DismissBackupReminderOn, DismissBackupReminderOff   browser.Target
}{
	ResetAccountButton: sel(`[data-testid="advanced-setting-reset-account"] button`),

	AdvancedGasControlOn:      sel(`[data-testid="advanced-setting-advanced-gas-inline"] .toggle-button--on`),
	AdvancedGasControlOff:     sel(`[data-testid="advanced-setting-advanced-gas-inline"] .toggle-button--off`),
	EnhancedTokenDetectionOn:  sel(`[data-testid="advanced-setting-token-detection"] .toggle-button--on`),
	EnhancedTokenDetectionOff: sel(`[data-testid="advanced-setting-token-detection"] .toggle-button--off`),
	ShowHexDataOn:             sel(`[data-testid="advanced-setting-hex-data"] .toggle-button--on`),
	ShowHexDataOff:            sel(`[data-testid="advanced-setting-hex-data"] .toggle-button--off`),
	TestnetConversionOn:       sel(`[data-testid="advanced-setting-show-testnet-conversion"] .toggle-button--on`),
	TestnetConversionOff:      sel(`[data-testid="advanced-setting-show-testnet-conversion"] .toggle-button--off`),
	ShowTestnetNetworksOn:     sel(`[data-testid="advanced-setting-show-testnet-conversion"] + div .toggle-button--on`),
	ShowTestnetNetworksOff:    sel(`[data-testid="advanced-setting-show-testnet-conversion"] + div .toggle-button--off`),
	CustomNonceOn:             sel(`[data-testid="advanced-setting-custom-nonce"] .toggle-button--on`),
	CustomNonceOff:            sel(`[data-testid="advanced-setting-custom-nonce"] .toggle-button--off`),
	DismissBackupReminderOn:   sel(`[data-testid="advanced-setting-dismiss-reminder"] .toggle-button--on`),
	DismissBackupReminderOff:  sel(`[data-testid="advanced-setting-dismiss-reminder"] .toggle-button--off`),
}

var experimentalPage = struct {
	EnhancedGasFeeUIOn, EnhancedGasFeeUIOff           browser.Target
	ShowCustomNetworkListOn, ShowCustomNetworkListOff browser.Target
}{
	EnhancedGasFeeUIOn:       sel(`[data-testid="advanced-setting-enhanced-gas-fee-ui"] .toggle-button--on`),
	EnhancedGasFeeUIOff:      sel(`[data-testid="advanced-setting-enhanced-gas-fee-ui"] .toggle-button--off`),
	ShowCustomNetworkListOn:  sel(`[data-testid="advanced-setting-show-custom-network-list"] .toggle-button--on`),
	ShowCustomNetworkListOff: sel(`[data-testid="advanced-setting-show-custom-network-list"] .toggle-button--off`),
}

var resetAccountModal = struct {
	ResetButton browser.Target
}{
	ResetButton: sel(".modal .button.btn-danger-primary"),
}

var addNetworkPage = struct {
	NetworkNameInput   browser.Target
	RPCURLInput        browser.Target
	ChainIDInput       browser.Target
	SymbolInput        browser.Target
	BlockExplorerInput browser.Target
	SaveButton         browser.Target
}{
	NetworkNameInput:   sel(".networks-tab__add-network-form .form-field:nth-child(1) input"),
	RPCURLInput:        sel(".networks-tab__add-network-form .form-field:nth-child(2) input"),
	ChainIDInput:       sel(".networks-tab__add-network-form .form-field:nth-child(3) input"),
	SymbolInput:        sel(".networks-tab__add-network-form .form-field:nth-child(4) input"),
	BlockExplorerInput: sel(".networks-tab__add-network-form .form-field:nth-child(5) input"),
	SaveButton:         sel(".networks-tab__add-network-form-footer button.btn-primary"),
}

var notificationPage = struct {
	AllowToSpendButton  browser.Target
	RejectToSpendButton browser.Target
	SelectAllCheckbox   browser.Target
	NextButton          browser.Target
	ConnectButton       browser.Target
}{
	AllowToSpendButton:  sel(`[data-testid="page-container-footer-next"]`),
	RejectToSpendButton: sel(`[data-testid="page-container-footer-cancel"]`),
	SelectAllCheckbox:   sel(".choose-account-list__header-check-box"),
	NextButton:          sel(".permissions-connect-choose-account__bottom-buttons button.btn-primary"),
	ConnectButton:       sel(".permission-approval-container__footers button.btn-primary"),
}

var signaturePage = struct {
	ScrollDownButton  browser.Target
	ConfirmButton     browser.Target
	RejectButton      browser.Target
	ConfirmDataButton browser.Target
	RejectDataButton  browser.Target
}{
	ScrollDownButton:  sel(".signature-request-message__scroll-button"),
	ConfirmButton:     sel(".request-signature__footer__sign-button"),
	RejectButton:      sel(".request-signature__footer__cancel-button"),
	ConfirmDataButton: sel(`.signature-request-footer button.btn-primary`),
	RejectDataButton:  sel(`.signature-request-footer button.btn-secondary`),
}

var encryptionPage = struct {
	ConfirmButton browser.Target
	RejectButton  browser.Target
}{
	ConfirmButton: sel(".request-encryption-public-key__footer__sign-button"),
	RejectButton:  sel(".request-encryption-public-key__footer__cancel-button"),
}

var decryptPage = struct {
	ConfirmButton browser.Target
	RejectButton  browser.Target
}{
	ConfirmButton: sel(".request-decrypt-message__footer__sign-button"),
	RejectButton:  sel(".request-decrypt-message__footer__cancel-button"),
}

var confirmPage = struct {
	EditGasFeeLegacyButton browser.Target
	OverrideAckButton      browser.Target
	GasLimitLegacyInput    browser.Target
	GasPriceLegacyInput    browser.Target
	EditGasFeeButton       browser.Target
	GasOptionLow           browser.Target
	GasOptionMarket        browser.Target
	GasOptionAggressive    browser.Target
	GasOptionSite          browser.Target
	GasOptionCustom        browser.Target
	EditGasLimitButton     browser.Target
	GasLimitInput          browser.Target
	BaseFeeInput           browser.Target
	PriorityFeeInput       browser.Target
	SaveCustomGasButton    browser.Target
	CustomNonceInput       browser.Target
	DataButton             browser.Target
	DetailsButton          browser.Target
	OriginValue            browser.Target
	BytesValue             browser.Target
	HexDataValue           browser.Target
	ConfirmButton          browser.Target
	RejectButton           browser.Target
}{
	EditGasFeeLegacyButton: sel(".transaction-detail-edit button"),
	OverrideAckButton:      sel(".edit-gas-display .edit-gas-display__dapp-acknowledgement-button"),
	GasLimitLegacyInput:    sel(".advanced-gas-controls input.form-field__input:nth-of-type(1)"),
	GasPriceLegacyInput:    sel(".advanced-gas-controls input.form-field__input:nth-of-type(2)"),
	EditGasFeeButton:       sel(`[data-testid="edit-gas-fee-button"]`),
	GasOptionLow:           sel(`[data-testid="edit-gas-fee-item-low"]`),
	GasOptionMarket:        sel(`[data-testid="edit-gas-fee-item-medium"]`),
	GasOptionAggressive:    sel(`[data-testid="edit-gas-fee-item-high"]`),
	GasOptionSite:          sel(`[data-testid="edit-gas-fee-item-dappSuggested"]`),
	GasOptionCustom:        sel(`[data-testid="edit-gas-fee-item-custom"]`),
	EditGasLimitButton:     sel(`[data-testid="advanced-gas-fee-edit"]`),
	GasLimitInput:          sel(`[data-testid="gas-limit-input"]`),
	BaseFeeInput:           sel(`[data-testid="base-fee-input"]`),
	PriorityFeeInput:       sel(`[data-testid="priority-fee-input"]`),
	SaveCustomGasButton:    sel(".popover-footer button.btn-primary"),
	CustomNonceInput:       sel(".custom-nonce-input input"),
	DataButton:             sel(".confirm-page-container-navigation__tab").WithText("data"),
	DetailsButton:          sel(".confirm-page-container-navigation__tab").WithText("details"),
	OriginValue:            sel(".confirm-page-container-content__data-box:nth-child(1) .confirm-page-container-content__data-field"),
	BytesValue:             sel(".confirm-page-container-content__data-box:nth-child(2) .confirm-page-container-content__data-field"),
	HexDataValue:           sel(".confirm-page-container-content__data-box-label + .confirm-page-container-content__data-box"),
	ConfirmButton:          sel(`[data-testid="page-container-footer-next"]`),
	RejectButton:           sel(`[data-testid="page-container-footer-cancel"]`),
}

var confirmationPage = struct {
	ApproveButton browser.Target
	CancelButton  browser.Target
}{
	ApproveButton: sel(".confirmation-footer__actions button.btn-primary"),
	CancelButton:  sel(".confirmation-footer__actions button.btn-secondary"),
}
