package cli

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/context"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/x/auth"
	"github.com/cosmos/cosmos-sdk/x/auth/client/utils"

	"github.com/mccallofthewild/gears/x/wasm/internal/types"
)

const (
	flagAmount                 = "amount"
	flagSource                 = "source"
	flagLabel                  = "label"
	flagAdmin                  = "admin"
	flagSalt                   = "salt"
	flagInstantiateByEverybody = "instantiate-everybody"
	flagInstantiateNobody      = "instantiate-nobody"
	flagInstantiateByAddress   = "instantiate-only-address"
)

// GetTxCmd returns the transaction commands for this module
func GetTxCmd(cdc *codec.Codec) *cobra.Command {
	txCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Wasm transaction subcommands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}
	txCmd.AddCommand(flags.PostCommands(
		StoreCodeCmd(cdc),
		InstantiateContractCmd(cdc),
		ExecuteContractCmd(cdc),
		MigrateContractCmd(cdc),
		UpdateContractAdminCmd(cdc),
		ClearContractAdminCmd(cdc),
	)...)
	return txCmd
}

// StoreCodeCmd will upload code to be reused.
func StoreCodeCmd(cdc *codec.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store [wasm file]",
		Short: "Upload a wasm binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inBuf := bufio.NewReader(cmd.InOrStdin())
			cliCtx := context.NewCLIContextWithInput(inBuf).WithCodec(cdc)
			txBldr := auth.NewTxBuilderFromCLI(inBuf).WithTxEncoder(utils.GetTxEncoder(cdc))

			msg, err := parseStoreCodeArgs(args, cliCtx.GetFromAddress())
			if err != nil {
				return err
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}

			return utils.GenerateOrBroadcastMsgs(cliCtx, txBldr, []sdk.Msg{msg})
		},
	}
	cmd.Flags().String(flagSource, "", "A valid URI reference to the contract's source code")
	cmd.Flags().String(flagInstantiateByEverybody, "", "Everybody can instantiate a contract from the code, optional")
	cmd.Flags().String(flagInstantiateNobody, "", "Nobody except the governance process can instantiate a contract from the code, optional")
	cmd.Flags().String(flagInstantiateByAddress, "", "Only this address can instantiate a contract instance from the code, optional")
	return cmd
}

func parseStoreCodeArgs(args []string, sender sdk.AccAddress) (types.MsgStoreCode, error) {
	wasm, err := ioutil.ReadFile(args[0])
	if err != nil {
		return types.MsgStoreCode{}, err
	}

	var perm *types.AccessConfig
	onlyAddrStr := viper.GetString(flagInstantiateByAddress)
	if onlyAddrStr != "" {
		allowedAddr, err := sdk.AccAddressFromBech32(onlyAddrStr)
		if err != nil {
			return types.MsgStoreCode{}, sdkErr(flagInstantiateByAddress, err)
		}
		x := types.AccessTypeOnlyAddress.With(allowedAddr)
		perm = &x
	} else if everybodyStr := viper.GetString(flagInstantiateByEverybody); everybodyStr != "" {
		ok, err := strconv.ParseBool(everybodyStr)
		if err != nil {
			return types.MsgStoreCode{}, sdkErr(flagInstantiateByEverybody, err)
		}
		if ok {
			perm = &types.AllowEverybody
		}
	} else if nobodyStr := viper.GetString(flagInstantiateNobody); nobodyStr != "" {
		ok, err := strconv.ParseBool(nobodyStr)
		if err != nil {
			return types.MsgStoreCode{}, sdkErr(flagInstantiateNobody, err)
		}
		if ok {
			perm = &types.AllowNobody
		}
	}

	msg := types.MsgStoreCode{
		Sender:                sender,
		WASMByteCode:          wasm,
		Source:                viper.GetString(flagSource),
		InstantiatePermission: perm,
	}
	return msg, nil
}

func sdkErr(flag string, err error) error {
	return fmt.Errorf("%s: %s", flag, err)
}

func decodeHexString(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// InstantiateContractCmd will instantiate a contract from previously uploaded code.
func InstantiateContractCmd(cdc *codec.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instantiate [code_id_int64] [json_encoded_init_args]",
		Short: "Instantiate a wasm contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inBuf := bufio.NewReader(cmd.InOrStdin())
			cliCtx := context.NewCLIContextWithInput(inBuf).WithCodec(cdc)
			txBldr := auth.NewTxBuilderFromCLI(inBuf).WithTxEncoder(utils.GetTxEncoder(cdc))

			msg, err := parseInstantiateArgs(args, cliCtx.GetFromAddress())
			if err != nil {
				return err
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}

			return utils.GenerateOrBroadcastMsgs(cliCtx, txBldr, []sdk.Msg{msg})
		},
	}
	cmd.Flags().String(flagAmount, "", "Coins to send to the contract during instantiation")
	cmd.Flags().String(flagLabel, "", "A human-readable name for this contract in lists")
	cmd.Flags().String(flagAdmin, "", "Address of an admin, optional")
	cmd.Flags().String(flagSalt, "", "Hex encoded salt for a predictable contract address, optional")
	return cmd
}

func parseInstantiateArgs(args []string, sender sdk.AccAddress) (types.MsgInstantiateContract, error) {
	codeID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return types.MsgInstantiateContract{}, err
	}

	amountStr := viper.GetString(flagAmount)
	amount, err := sdk.ParseCoins(amountStr)
	if err != nil {
		return types.MsgInstantiateContract{}, err
	}

	label := viper.GetString(flagLabel)
	if label == "" {
		return types.MsgInstantiateContract{}, errors.New("label is required on all contracts")
	}

	initMsg := args[1]

	var adminAddr sdk.AccAddress
	if adminStr := viper.GetString(flagAdmin); adminStr != "" {
		adminAddr, err = sdk.AccAddressFromBech32(adminStr)
		if err != nil {
			return types.MsgInstantiateContract{}, sdkErr(flagAdmin, err)
		}
	}

	var salt []byte
	if saltStr := viper.GetString(flagSalt); saltStr != "" {
		salt, err = decodeHexString(saltStr)
		if err != nil {
			return types.MsgInstantiateContract{}, sdkErr(flagSalt, err)
		}
	}

	msg := types.MsgInstantiateContract{
		Sender:    sender,
		CodeID:    codeID,
		Label:     label,
		InitFunds: amount,
		InitMsg:   []byte(initMsg),
		Admin:     adminAddr,
		Salt:      salt,
	}
	return msg, nil
}

// ExecuteContractCmd will execute a contract method.
func ExecuteContractCmd(cdc *codec.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute [contract_addr_bech32] [json_encoded_send_args]",
		Short: "Execute a command on a wasm contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inBuf := bufio.NewReader(cmd.InOrStdin())
			cliCtx := context.NewCLIContextWithInput(inBuf).WithCodec(cdc)
			txBldr := auth.NewTxBuilderFromCLI(inBuf).WithTxEncoder(utils.GetTxEncoder(cdc))

			contractAddr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return err
			}

			amountStr := viper.GetString(flagAmount)
			amount, err := sdk.ParseCoins(amountStr)
			if err != nil {
				return err
			}

			msg := types.MsgExecuteContract{
				Sender:    cliCtx.GetFromAddress(),
				Contract:  contractAddr,
				SentFunds: amount,
				Msg:       []byte(args[1]),
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return utils.GenerateOrBroadcastMsgs(cliCtx, txBldr, []sdk.Msg{msg})
		},
	}
	cmd.Flags().String(flagAmount, "", "Coins to send to the contract along with command")
	return cmd
}

// MigrateContractCmd will migrate a contract to a new code version.
func MigrateContractCmd(cdc *codec.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [contract_addr_bech32] [new_code_id_int64] [json_encoded_migration_args]",
		Short: "Migrate a wasm contract to a new code version",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inBuf := bufio.NewReader(cmd.InOrStdin())
			cliCtx := context.NewCLIContextWithInput(inBuf).WithCodec(cdc)
			txBldr := auth.NewTxBuilderFromCLI(inBuf).WithTxEncoder(utils.GetTxEncoder(cdc))

			contractAddr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return sdkErr("contract", err)
			}
			codeID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return sdkErr("code id", err)
			}

			msg := types.MsgMigrateContract{
				Sender:     cliCtx.GetFromAddress(),
				Contract:   contractAddr,
				CodeID:     codeID,
				MigrateMsg: []byte(args[2]),
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return utils.GenerateOrBroadcastMsgs(cliCtx, txBldr, []sdk.Msg{msg})
		},
	}
	return cmd
}

// UpdateContractAdminCmd sets a new admin for a contract
func UpdateContractAdminCmd(cdc *codec.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-contract-admin [contract_addr_bech32] [new_admin_addr_bech32]",
		Short: "Set new admin for a contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inBuf := bufio.NewReader(cmd.InOrStdin())
			cliCtx := context.NewCLIContextWithInput(inBuf).WithCodec(cdc)
			txBldr := auth.NewTxBuilderFromCLI(inBuf).WithTxEncoder(utils.GetTxEncoder(cdc))

			contractAddr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return sdkErr("contract", err)
			}
			newAdmin, err := sdk.AccAddressFromBech32(args[1])
			if err != nil {
				return sdkErr("new admin", err)
			}

			msg := types.MsgUpdateAdmin{
				Sender:   cliCtx.GetFromAddress(),
				Contract: contractAddr,
				NewAdmin: newAdmin,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return utils.GenerateOrBroadcastMsgs(cliCtx, txBldr, []sdk.Msg{msg})
		},
	}
	return cmd
}

// ClearContractAdminCmd clears an admin for a contract
func ClearContractAdminCmd(cdc *codec.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-contract-admin [contract_addr_bech32]",
		Short: "Clears admin for a contract to prevent further migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inBuf := bufio.NewReader(cmd.InOrStdin())
			cliCtx := context.NewCLIContextWithInput(inBuf).WithCodec(cdc)
			txBldr := auth.NewTxBuilderFromCLI(inBuf).WithTxEncoder(utils.GetTxEncoder(cdc))

			contractAddr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return sdkErr("contract", err)
			}

			msg := types.MsgClearAdmin{
				Sender:   cliCtx.GetFromAddress(),
				Contract: contractAddr,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return utils.GenerateOrBroadcastMsgs(cliCtx, txBldr, []sdk.Msg{msg})
		},
	}
	return cmd
}
