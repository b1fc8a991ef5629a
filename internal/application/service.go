package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/logging"
	"github.com/bnema/driftbottle/internal/ports"
	"github.com/google/uuid"
)

type Service struct {
	ledger   ports.Ledger
	deriver  ports.AddressDeriver
	selector *Selector
	logger   logging.Logger
	newNonce func() string
}

func NewService(ledger ports.Ledger, deriver ports.AddressDeriver, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Service{
		ledger:   ledger,
		deriver:  deriver,
		selector: NewSelector(ledger),
		logger:   logger,
		newNonce: uuid.NewString,
	}
}

// Deposit throws a bottle. The message and the depositor's throw bag are
// checked before any value moves, and the whole deposit commits atomically.
func (s *Service) Deposit(ctx context.Context, signer ports.Signer, cmd DepositCommand) (DepositResult, error) {
	if err := domain.ValidateMessage(cmd.Message); err != nil {
		return DepositResult{}, err
	}
	if _, err := domain.CoinsToUnits(cmd.Amount); err != nil {
		return DepositResult{}, err
	}

	sender := signer.Address()
	bottleAddr, _, err := s.deriver.FindProgramAddress(domain.BottleSeeds(sender, cmd.ID))
	if err != nil {
		return DepositResult{}, fmt.Errorf("derive bottle address: %w", err)
	}
	escrowAddr, bump, err := s.deriver.FindProgramAddress(domain.BottleAssetSeeds(sender, cmd.ID))
	if err != nil {
		return DepositResult{}, fmt.Errorf("derive escrow address: %w", err)
	}
	bagAddr, _, err := s.deriver.FindProgramAddress(domain.BagSeeds(sender, domain.OperationThrow))
	if err != nil {
		return DepositResult{}, fmt.Errorf("derive throw bag address: %w", err)
	}

	ins, err := s.sign(ctx, signer, domain.Instruction{
		Name:     domain.InstructionThrowABottle,
		Accounts: []domain.Address{bottleAddr, escrowAddr, bagAddr},
		Args: map[string]string{
			"id":      strconv.FormatUint(uint64(cmd.ID), 10),
			"amount":  strconv.FormatUint(cmd.Amount, 10),
			"message": cmd.Message,
		},
	})
	if err != nil {
		return DepositResult{}, err
	}

	id, units, err := depositTerms(ins.Instruction)
	if err != nil {
		return DepositResult{}, err
	}

	var bottle domain.Bottle
	receipt, err := s.ledger.Execute(ctx, ins, func(tx ports.LedgerTx) error {
		now := tx.Now()

		bag, err := readBag(tx, bagAddr)
		if err != nil {
			return err
		}
		bag, err = bag.Admit(now)
		if err != nil {
			return err
		}

		if units > 0 {
			if err := tx.Transfer(sender, escrowAddr, units); err != nil {
				return fmt.Errorf("escrow deposit: %w", err)
			}
		}

		created := domain.Bottle{
			ID:              id,
			Sender:          sender,
			Timestamp:       now,
			State:           domain.BottleStateDrifting,
			Asset:           units,
			AssetAccount:    escrowAddr,
			DerivationNonce: bump,
			Message:         cmd.Message,
		}
		data, err := domain.EncodeBottle(created)
		if err != nil {
			return err
		}
		if err := tx.CreateRecord(bottleAddr, data); err != nil {
			if errors.Is(err, domain.ErrRecordExists) {
				return fmt.Errorf("%w: id %d from %s", domain.ErrBottleExists, id, sender)
			}
			return fmt.Errorf("create bottle: %w", err)
		}
		if err := tx.PutRecord(bagAddr, domain.EncodeBag(bag)); err != nil {
			return fmt.Errorf("update throw bag: %w", err)
		}

		bottle = created
		return nil
	})
	if err != nil {
		s.logger.Warn(ctx, "deposit rejected", "sender", sender, "id", cmd.ID, "error", err)
		return DepositResult{}, err
	}

	s.logger.Info(ctx, "bottle thrown", "bottle", bottleAddr, "asset", units, "receipt", receipt.ID)
	return DepositResult{Receipt: receipt, Bottle: bottle, Address: bottleAddr, AssetAccount: escrowAddr}, nil
}

// Claim retrieves one bottle. Nothing is committed unless the state flip and
// the escrow release both succeed.
func (s *Service) Claim(ctx context.Context, signer ports.Signer, cmd ClaimCommand) (ClaimResult, error) {
	claimant := signer.Address()
	bagAddr, _, err := s.deriver.FindProgramAddress(domain.BagSeeds(claimant, domain.OperationRetrieve))
	if err != nil {
		return ClaimResult{}, fmt.Errorf("derive retrieve bag address: %w", err)
	}

	ins, err := s.sign(ctx, signer, domain.Instruction{
		Name:     domain.InstructionRetrieveABottle,
		Accounts: []domain.Address{cmd.Bottle, cmd.AssetAccount, bagAddr},
	})
	if err != nil {
		return ClaimResult{}, err
	}

	var claimed domain.Bottle
	receipt, err := s.ledger.Execute(ctx, ins, func(tx ports.LedgerTx) error {
		data, ok, err := tx.Record(cmd.Bottle)
		if err != nil {
			return fmt.Errorf("read bottle: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrBottleNotFound, cmd.Bottle)
		}
		bottle, err := domain.DecodeBottle(data)
		if err != nil {
			return err
		}

		if bottle.AssetAccount != cmd.AssetAccount {
			return fmt.Errorf("%w: bottle %s", domain.ErrAssetAccountMismatch, cmd.Bottle)
		}
		if bottle.Sender == tx.Signer() {
			return domain.ErrCannotRetrieveOwnBottle
		}

		bag, err := readBag(tx, bagAddr)
		if err != nil {
			return err
		}
		bag, err = bag.Admit(tx.Now())
		if err != nil {
			return err
		}

		if err := bottle.Retrieve(); err != nil {
			return err
		}

		if bottle.Asset > 0 {
			seeds := domain.BottleAssetSeeds(bottle.Sender, bottle.ID)
			if err := tx.TransferSigned(bottle.AssetAccount, claimant, bottle.Asset, seeds, bottle.DerivationNonce); err != nil {
				return fmt.Errorf("release escrow: %w", err)
			}
		}

		updated, err := domain.EncodeBottle(bottle)
		if err != nil {
			return err
		}
		if err := tx.PutRecord(cmd.Bottle, updated); err != nil {
			return fmt.Errorf("update bottle: %w", err)
		}
		if err := tx.PutRecord(bagAddr, domain.EncodeBag(bag)); err != nil {
			return fmt.Errorf("update retrieve bag: %w", err)
		}

		claimed = bottle
		return nil
	})
	if err != nil {
		s.logger.Warn(ctx, "claim rejected", "claimant", claimant, "bottle", cmd.Bottle, "error", err)
		return ClaimResult{}, err
	}

	s.logger.Info(ctx, "bottle retrieved", "bottle", cmd.Bottle, "asset", claimed.Asset, "receipt", receipt.ID)
	return ClaimResult{Receipt: receipt, Address: cmd.Bottle, Bottle: claimed, Amount: claimed.Asset}, nil
}

// ClaimOldest runs the selector once and claims its pick. found is false when
// nothing is drifting.
func (s *Service) ClaimOldest(ctx context.Context, signer ports.Signer) (ClaimResult, bool, error) {
	return s.claimOldest(ctx, signer, nil)
}

func (s *Service) claimOldest(ctx context.Context, signer ports.Signer, onSelect func(Candidate)) (ClaimResult, bool, error) {
	candidate, found, err := s.selector.SelectOldest(ctx)
	if err != nil || !found {
		return ClaimResult{}, found, err
	}
	if onSelect != nil {
		onSelect(candidate)
	}

	result, err := s.Claim(ctx, signer, ClaimCommand{Bottle: candidate.Address, AssetAccount: candidate.Bottle.AssetAccount})
	if err != nil {
		return ClaimResult{}, true, err
	}

	return result, true, nil
}

// Retrieve is ClaimOldest with a retry budget for lost claim races. Every
// other failure is returned as is.
func (s *Service) Retrieve(ctx context.Context, signer ports.Signer, cmd RetrieveCommand) (ClaimResult, bool, error) {
	for attempt := 0; ; attempt++ {
		var onSelect func(Candidate)
		if cmd.OnSelect != nil {
			n := attempt
			onSelect = func(candidate Candidate) { cmd.OnSelect(n, candidate) }
		}

		result, found, err := s.claimOldest(ctx, signer, onSelect)
		if err == nil || !errors.Is(err, domain.ErrBottleAlreadyRetrieved) || attempt >= cmd.Retries {
			return result, found, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ClaimResult{}, found, ctxErr
		}

		s.logger.Debug(ctx, "lost claim race, selecting again", "attempt", attempt+1)
	}
}

func (s *Service) ListDrifting(ctx context.Context) ([]Candidate, error) {
	return s.selector.Drifting(ctx)
}

func (s *Service) Airdrop(ctx context.Context, addr domain.Address, coins uint64) (uint64, error) {
	units, err := domain.CoinsToUnits(coins)
	if err != nil {
		return 0, err
	}
	if err := s.ledger.Airdrop(ctx, addr, units); err != nil {
		return 0, fmt.Errorf("airdrop: %w", err)
	}

	return s.ledger.Balance(ctx, addr)
}

func (s *Service) Balance(ctx context.Context, addr domain.Address) (uint64, error) {
	return s.ledger.Balance(ctx, addr)
}

// Allowances reports the actor's remaining throws and retrieves at now, in
// unix seconds.
func (s *Service) Allowances(ctx context.Context, actor domain.Address, now int64) ([]Allowance, error) {
	kinds := []domain.OperationKind{domain.OperationThrow, domain.OperationRetrieve}
	allowances := make([]Allowance, 0, len(kinds))
	for _, kind := range kinds {
		remaining, err := s.remaining(ctx, actor, kind, now)
		if err != nil {
			return nil, err
		}
		allowances = append(allowances, Allowance{Kind: kind, Remaining: remaining})
	}

	return allowances, nil
}

func (s *Service) remaining(ctx context.Context, actor domain.Address, kind domain.OperationKind, now int64) (uint8, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown operation kind %q", kind)
	}

	addr, _, err := s.deriver.FindProgramAddress(domain.BagSeeds(actor, kind))
	if err != nil {
		return 0, fmt.Errorf("derive %s bag address: %w", kind, err)
	}

	data, err := s.ledger.GetRecord(ctx, addr)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.MaxBottlesPerDay, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s bag: %w", kind, err)
	}

	bag, err := domain.DecodeBag(data)
	if err != nil {
		return 0, err
	}

	return bag.Remaining(now), nil
}

func (s *Service) sign(ctx context.Context, signer ports.Signer, ins domain.Instruction) (domain.SignedInstruction, error) {
	ins.Program = s.deriver.Program()
	ins.Signer = signer.Address()
	ins.Nonce = s.newNonce()

	payload, err := ins.SigningBytes()
	if err != nil {
		return domain.SignedInstruction{}, err
	}
	signature, err := signer.Sign(ctx, payload)
	if err != nil {
		return domain.SignedInstruction{}, fmt.Errorf("sign %s: %w", ins.Name, err)
	}

	return domain.SignedInstruction{Instruction: ins, Signature: signature}, nil
}

// readBag returns the zero Bag for an actor that has never operated.
func readBag(tx ports.LedgerTx, addr domain.Address) (domain.Bag, error) {
	data, ok, err := tx.Record(addr)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("read bag: %w", err)
	}
	if !ok {
		return domain.Bag{}, nil
	}

	return domain.DecodeBag(data)
}

// depositTerms reads the bottle id and escrow amount back from the signed
// arguments, so the record written is exactly what the depositor signed.
func depositTerms(ins domain.Instruction) (domain.BottleID, uint64, error) {
	id, err := ins.Uint64Arg("id")
	if err != nil {
		return 0, 0, err
	}
	coins, err := ins.Uint64Arg("amount")
	if err != nil {
		return 0, 0, err
	}
	units, err := domain.CoinsToUnits(coins)
	if err != nil {
		return 0, 0, err
	}

	return domain.BottleID(id), units, nil
}
