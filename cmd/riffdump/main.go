// This tool dumps the reconstructed chunk tree of a RIFF-family file,
// the canonical slot assignment and any metadata chunks it can decode.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cwbudde/rifftree"
	"go.uber.org/zap"
)

const missingPathMessage = "You must pass the path of the file to dump"

var errMissingPath = errors.New("missing path argument")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("riffdump", flag.ContinueOnError)
	verbose := flagSet.Bool("verbose", false, "log reconstruction details")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	src, err := rifftree.OpenFileSource(flagSet.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	var opts []rifftree.Option

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()

		opts = append(opts, rifftree.WithLogger(logger))
	}

	m := rifftree.NewManager(src, opts...)

	if err := m.Parse(); err != nil {
		// Keep going: the partial tree is still worth dumping.
		fmt.Fprintf(out, "parse: %v\n", err)
	}

	table := m.Table()
	if table.Len() == 0 {
		return errors.New("nothing reconstructed")
	}

	fmt.Fprintf(out, "%8s  %-28s %-12s %10s %10s %10s\n",
		"offset", "tag", "role", "leaf", "sub", "residue")

	table.Walk(func(depth int, _ rifftree.NodeIndex, n *rifftree.Node) bool {
		label := n.Tag.String()
		if n.Container {
			label += " (" + n.Form.String() + ")"
		}

		fmt.Fprintf(out, "%8d  %-28s %-12s %10d %10d %10d\n",
			n.Offset, strings.Repeat("  ", depth)+label, n.Role,
			n.LeafSize, n.SubSize, n.Residue)

		return true
	})

	if !m.Valid() {
		return nil
	}

	fmt.Fprintf(out, "\nform: %s\n", m.Form())

	if coding := m.Coding(); m.Channels() > 0 {
		fmt.Fprintf(out, "stream: %d ch, %d Hz, %s, %d frames\n",
			m.Channels(), m.SampleRate(), coding, m.FrameCount())
	}

	if dur, err := m.Duration(); err == nil {
		fmt.Fprintf(out, "duration: %s\n", dur)
	}

	if trailing := m.TrailingBytes(); trailing > 0 {
		fmt.Fprintf(out, "trailing bytes: %d\n", trailing)
	}

	if bucket := m.Bucket(); len(bucket) > 0 {
		tags := make([]string, 0, len(bucket))
		for _, idx := range bucket {
			tags = append(tags, m.Node(idx).Tag.String())
		}

		fmt.Fprintf(out, "bucket: %s\n", strings.Join(tags, " "))
	}

	printMetadata(out, m)

	return nil
}

func printMetadata(out io.Writer, m *rifftree.Manager) {
	md, err := m.ReadInfoMetadata()
	if err == nil && md != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Artist: %s\n", md.Artist)
		fmt.Fprintf(out, "Title: %s\n", md.Title)
		fmt.Fprintf(out, "Comments: %s\n", md.Comments)
		fmt.Fprintf(out, "Copyright: %s\n", md.Copyright)
		fmt.Fprintf(out, "CreationDate: %s\n", md.CreationDate)
		fmt.Fprintf(out, "Engineer: %s\n", md.Engineer)
		fmt.Fprintf(out, "Technician: %s\n", md.Technician)
		fmt.Fprintf(out, "Genre: %s\n", md.Genre)
		fmt.Fprintf(out, "Keywords: %s\n", md.Keywords)
		fmt.Fprintf(out, "Medium: %s\n", md.Medium)
		fmt.Fprintf(out, "Product: %s\n", md.Product)
		fmt.Fprintf(out, "Subject: %s\n", md.Subject)
		fmt.Fprintf(out, "Software: %s\n", md.Software)
		fmt.Fprintf(out, "Source: %s\n", md.Source)
		fmt.Fprintf(out, "Location: %s\n", md.Location)
		fmt.Fprintf(out, "TrackNbr: %s\n", md.TrackNbr)
	}

	if bext := m.BroadcastExtension(); bext != nil {
		fmt.Fprintf(out, "\nBroadcast: %q by %q (%s %s)\n",
			bext.Description, bext.Originator, bext.OriginationDate, bext.OriginationTime)
	}

	if info, err := m.ReadSamplerInfo(); err == nil && info != nil {
		fmt.Fprintf(out, "\nSampler: %+v\n", info)
		for i, l := range info.Loops {
			fmt.Fprintf(out, "\tloop [%d]:\t%+v\n", i, l)
		}
	}

	if points, err := m.ReadCuePoints(); err == nil {
		for i, c := range points {
			fmt.Fprintf(out, "\tcue point [%d]:\t%+v\n", i, c)
		}
	}
}
