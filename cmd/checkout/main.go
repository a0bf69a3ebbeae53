// checkout is the terminal client of the box office. It selects seats, stages
// the purchase locally, sends the customer to the payment page and finalizes
// the transaction once the customer is back.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"boxoffice/internal/checkout"
	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/external"
	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"

	"github.com/spf13/pflag"
)

const usage = `Usage: checkout <command> [flags]

Commands:
  events     list events
  seats      show the seat map of an event
  book       select seats and start a ticket payment
  donate     start a donation payment
  finalize   finalize a transaction after returning from the payment page
  pending    list transactions staged in local storage
  tickets    list tickets bought with an email
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	config.LoadDotEnv()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(os.Stderr, usage)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := checkout.NewAPIClient(cfg.Checkout.APIBaseURL, cfg.Checkout.APITimeout)

	command, rest := args[0], args[1:]
	switch command {
	case "events":
		return runEvents(ctx, client, rest)
	case "seats":
		return runSeats(ctx, client, rest)
	case "book":
		return runBook(ctx, cfg, client, rest)
	case "donate":
		return runDonate(ctx, cfg, client, rest)
	case "finalize":
		return runFinalize(ctx, cfg, client, rest)
	case "pending":
		return runPending(cfg)
	case "tickets":
		return runTickets(ctx, client, rest)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func parse(flags *pflag.FlagSet, args []string) error {
	if err := flags.Parse(args); err != nil {
		return err
	}
	if extra := flags.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return nil
}

func runEvents(ctx context.Context, client *checkout.APIClient, args []string) error {
	flags := pflag.NewFlagSet("events", pflag.ContinueOnError)
	query := flags.StringP("query", "q", "", "search text")
	page := flags.Int("page", 1, "page number")
	pageSize := flags.Int("page-size", 20, "events per page")
	if err := parse(flags, args); err != nil {
		return err
	}

	events, err := client.Events(ctx, *query, *page, *pageSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	for _, e := range events {
		price := "-"
		if e.Price != nil {
			price = fmt.Sprintf("₹%.2f", *e.Price)
		}
		fmt.Printf("%4d  %-40s %s %s  %s\n", e.ID, e.Title, e.Date, e.Time, price)
	}
	return nil
}

func runSeats(ctx context.Context, client *checkout.APIClient, args []string) error {
	flags := pflag.NewFlagSet("seats", pflag.ContinueOnError)
	eventID := flags.Int64("event", 0, "event id")
	if err := parse(flags, args); err != nil {
		return err
	}
	if *eventID < 1 {
		return errors.New("--event is required")
	}

	seatMap, err := client.Seats(ctx, *eventID)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s %s\n", seatMap.Event.Title, seatMap.Event.Date, seatMap.Event.Time)
	fmt.Printf("%d available, %d booked\n\n", seatMap.Available, seatMap.Booked)
	printSeats(seatMap.Seats)
	return nil
}

// printSeats renders one line per row, booked seats as "xx"
func printSeats(seats []models.SeatView) {
	row := ""
	var line strings.Builder
	for _, s := range seats {
		if s.Row != row {
			if line.Len() > 0 {
				fmt.Println(line.String())
				line.Reset()
			}
			row = s.Row
			fmt.Fprintf(&line, "%-5s", row)
		}
		if s.Status == models.SeatBooked {
			line.WriteString(" xx")
		} else {
			fmt.Fprintf(&line, " %2d", s.Number)
		}
	}
	if line.Len() > 0 {
		fmt.Println(line.String())
	}
}

func runBook(ctx context.Context, cfg *config.Config, client *checkout.APIClient, args []string) error {
	flags := pflag.NewFlagSet("book", pflag.ContinueOnError)
	eventID := flags.Int64("event", 0, "event id")
	seats := flags.StringSlice("seats", nil, "seat ids, e.g. A1,A2")
	var customer checkout.Customer
	flags.StringVar(&customer.Name, "name", "", "customer name")
	flags.StringVar(&customer.Email, "email", "", "customer email")
	flags.StringVar(&customer.Phone, "phone", "", "customer phone")
	if err := parse(flags, args); err != nil {
		return err
	}
	if *eventID < 1 {
		return errors.New("--event is required")
	}

	storage, err := checkout.NewFileStorage(cfg.Checkout.StoragePath)
	if err != nil {
		return err
	}

	seatMap, err := client.Seats(ctx, *eventID)
	if err != nil {
		return err
	}

	machine := checkout.NewMachine(seatMap.Event, seatMap.Seats, seatMap.Event.PricePerSeat(cfg.Checkout.PricePerSeat), client, storage)
	for _, id := range *seats {
		if err := machine.Toggle(strings.ToUpper(strings.TrimSpace(id))); err != nil {
			return err
		}
	}
	if err := machine.Advance(); err != nil {
		return err
	}
	if err := machine.SetCustomer(customer); err != nil {
		return err
	}

	fmt.Printf("%d seat(s) for %s, total ₹%.2f\n", len(machine.Selected()), seatMap.Event.Title, machine.Total())

	redirect, err := machine.Submit(ctx)
	if err != nil {
		return err
	}

	printRedirect(redirect)
	return nil
}

func runDonate(ctx context.Context, cfg *config.Config, client *checkout.APIClient, args []string) error {
	flags := pflag.NewFlagSet("donate", pflag.ContinueOnError)
	amount := flags.Float64("amount", 0, "donation amount")
	var donor checkout.Donor
	flags.StringVar(&donor.Name, "name", "", "donor name")
	flags.StringVar(&donor.Email, "email", "", "donor email")
	flags.StringVar(&donor.Phone, "phone", "", "donor phone")
	if err := parse(flags, args); err != nil {
		return err
	}

	storage, err := checkout.NewFileStorage(cfg.Checkout.StoragePath)
	if err != nil {
		return err
	}

	redirect, err := checkout.StartDonation(ctx, client, storage, *amount, donor)
	if err != nil {
		return err
	}

	printRedirect(redirect)
	return nil
}

func printRedirect(redirect *checkout.Redirect) {
	fmt.Printf("Transaction: %s\n", redirect.MerchantTransactionID)
	fmt.Printf("Complete the payment of ₹%.2f at:\n  %s\n", redirect.Amount, redirect.URL)
	fmt.Printf("Then run: checkout finalize --id %s\n", redirect.MerchantTransactionID)
}

func runFinalize(ctx context.Context, cfg *config.Config, client *checkout.APIClient, args []string) error {
	flags := pflag.NewFlagSet("finalize", pflag.ContinueOnError)
	id := flags.String("id", "", "merchant transaction id")
	if err := parse(flags, args); err != nil {
		return err
	}

	storage, err := checkout.NewFileStorage(cfg.Checkout.StoragePath)
	if err != nil {
		return err
	}

	// Without the database the purchase cannot be recorded. The staged entry
	// stays on disk so finalize can be run again.
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("cannot record the purchase, run finalize again later: %w", err)
	}
	defer db.Close()

	repos := repository.NewRepositories(db)
	finalizer, closeFinalizer := newFinalizer(cfg, client, storage, repos.Bookings, repos.Donations)
	defer closeFinalizer()

	fmt.Println("Finalizing your transaction...")
	result := finalizer.Finalize(ctx, *id)

	switch result.Outcome {
	case checkout.OutcomeSuccess:
		fmt.Println("Payment Successful!")
	case checkout.OutcomePartialSuccess:
		fmt.Println("Payment Received")
	default:
		fmt.Println("Transaction Failed")
	}
	fmt.Println(result.Message)

	if result.Transaction != nil && result.Transaction.TransactionID != "" && result.Outcome != checkout.OutcomeFailed {
		fmt.Printf("Transaction ID: %s\n", result.Transaction.TransactionID)
		fmt.Printf("Amount Paid: ₹%.2f\n", result.Transaction.AmountMajor())
	}

	if result.Outcome == checkout.OutcomeFailed {
		return errors.New("transaction failed")
	}
	return nil
}

// newFinalizer wires the workflow. An unreachable broker only disables event publishing.
func newFinalizer(cfg *config.Config, api checkout.PaymentAPI, storage checkout.LocalStorage, bookings checkout.BookingWriter, donations checkout.DonationWriter) (*checkout.Finalizer, func()) {
	publisher := messaging.ConnectOptional(cfg.NATS)

	finalizer := checkout.NewFinalizer(
		api,
		storage,
		bookings,
		donations,
		external.NewNotificationClient(cfg.Notifier),
		publisher,
		checkout.FinalizerConfig{
			SettleDelay:  cfg.Checkout.SettleDelay,
			PollInterval: cfg.Checkout.PollInterval,
			PollAttempts: cfg.Checkout.PollAttempts,
		},
	)

	return finalizer, func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("Failed to close NATS connection", "error", err)
		}
	}
}

func runPending(cfg *config.Config) error {
	storage, err := checkout.NewFileStorage(cfg.Checkout.StoragePath)
	if err != nil {
		return err
	}

	keys, err := storage.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No transactions awaiting finalization.")
		return nil
	}

	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func runTickets(ctx context.Context, client *checkout.APIClient, args []string) error {
	flags := pflag.NewFlagSet("tickets", pflag.ContinueOnError)
	email := flags.String("email", "", "customer email")
	if err := parse(flags, args); err != nil {
		return err
	}

	bookings, err := client.Bookings(ctx, *email)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Println("No tickets found.")
		return nil
	}

	for _, b := range bookings {
		state := "active"
		if !b.IsTicketActive {
			state = "void"
		}
		fmt.Printf("#%d  %s  %s %s  seats %s  (%s)\n", b.ID, b.EventTitle, b.EventDate, b.EventTime, strings.Join(b.SelectedSeats, ","), state)
	}
	return nil
}
