// railctl is the operator CLI for the reservation database: schema migration,
// booked-seat counter repair and waiting-list inspection.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	intconfig "railway/internal/config"
	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/repositories"
	"railway/internal/reservation"
	"railway/internal/utils"
)

const usage = `railctl manages the railway reservation database.

Usage:
  railctl migrate
  railctl recompute --class N
  railctl queue --train NO --from STN --to STN --date YYYY-MM-DD --class N

Connection settings come from the same environment (or CONFIG_FILE) as the server.
`

// deps is what a subcommand needs once the database is reachable.
type deps struct {
	db     *sql.DB
	engine *reservation.Engine
	loc    *time.Location
}

// connect is replaced in tests.
var connect = func() (deps, func(), error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return deps{}, nil, err
	}
	utils.ConfigureLogger(env.Log.Level, env.Log.Format)
	db, err := intconfig.ConnectDB(env)
	if err != nil {
		return deps{}, nil, err
	}
	loc := env.Location()
	return deps{
		db:     db,
		engine: reservation.NewEngine(repositories.ReservationStore{DB: db}, loc),
		loc:    loc,
	}, intconfig.CloseDB, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(out, usage)
		return nil
	}
	switch args[0] {
	case "migrate":
		return runMigrate(ctx, args[1:], out)
	case "recompute":
		return runRecompute(ctx, args[1:], out)
	case "queue":
		return runQueue(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q (run railctl --help)", args[0])
	}
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, closeDB, err := connect()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repositories.EnsureSchema(ctx, d.db); err != nil {
		return err
	}
	fmt.Fprintf(out, "applied %d schema statements\n", len(repositories.SchemaStatements()))
	return nil
}

func runRecompute(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("recompute", pflag.ContinueOnError)
	fs.SetOutput(out)
	classID := fs.Int64("class", 0, "class id whose booked_seats counter is reset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *classID <= 0 {
		return domain.ValidationError{Field: "class", Msg: "is required"}
	}
	d, closeDB, err := connect()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := d.engine.RecomputeBookedSeats(ctx, *classID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "class %d booked_seats = %d\n", *classID, n)
	return nil
}

func runQueue(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("queue", pflag.ContinueOnError)
	fs.SetOutput(out)
	trainNo := fs.String("train", "", "train number")
	from := fs.String("from", "", "source station id")
	to := fs.String("to", "", "destination station id")
	date := fs.String("date", "", "journey date (YYYY-MM-DD)")
	classID := fs.Int64("class", 0, "class id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *trainNo == "" || *from == "" || *to == "" || *date == "" || *classID <= 0 {
		return domain.ValidationError{Field: "queue", Msg: "--train, --from, --to, --date and --class are required"}
	}
	d, closeDB, err := connect()
	if err != nil {
		return err
	}
	defer closeDB()

	day, err := utils.ParseDate(*date, d.loc)
	if err != nil {
		return domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	key := models.NewJourneyKey(*trainNo, strings.ToUpper(*from), strings.ToUpper(*to), day)
	queue, err := d.engine.WaitingList(ctx, key, *classID)
	if err != nil {
		return err
	}
	return printQueue(out, key, *classID, queue, d.loc)
}

func printQueue(out io.Writer, key models.JourneyKey, classID int64, queue []models.QueueEntry, loc *time.Location) error {
	fmt.Fprintf(out, "%s class %d: %d waiting\n", key, classID, len(queue))
	if len(queue) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tPNR\tPASSENGER\tOWNER\tALLOCATED")
	for i, e := range queue {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s:%s\t%s\n",
			i+1, e.PNR, e.PassengerName, e.Owner.Kind, e.Owner.ID, utils.FormatDateTime(e.AllocatedAt, loc))
	}
	return tw.Flush()
}
