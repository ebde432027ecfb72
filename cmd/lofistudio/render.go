package main

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/lofistudio/internal/compose"
	"github.com/satindergrewal/lofistudio/internal/progress"
	"github.com/satindergrewal/lofistudio/internal/studio"
	"github.com/satindergrewal/lofistudio/internal/style"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func formatDuration(d time.Duration) string {
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := cfg.CheckDuration(duration); err != nil {
		return err
	}
	fs, err := parseFormats()
	if err != nil {
		return err
	}
	if !style.IsValid(styleName) {
		fmt.Fprintf(os.Stderr, "Warning: unknown style %q, using the default profile\n", styleName)
	}

	job := studio.Job{
		Request: compose.Request{Duration: duration, Style: styleName},
		Formats: fs,
		Image:   withImage,
		Video:   withVideo,
	}
	if cmd.Flags().Changed("seed") {
		job.Seed = &seed
	}

	st, _ := newStudio(outputDir)
	rep := progress.NewReporter(os.Stdout, verbose)
	res, err := st.Run(cmd.Context(), job, rep)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := cfg.CheckDuration(duration); err != nil {
		return err
	}
	fs, err := parseFormats()
	if err != nil {
		return err
	}
	names := batchStyles
	if len(names) == 0 {
		names = style.Names()
	}
	if batchCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	var jobs []studio.Job
	for _, name := range names {
		for i := 0; i < batchCount; i++ {
			job := studio.Job{
				Request: compose.Request{Duration: duration, Style: name},
				Formats: fs,
				Image:   withImage,
				Video:   withVideo,
			}
			if cmd.Flags().Changed("seed") {
				s := seed + uint64(len(jobs))
				job.Seed = &s
			}
			jobs = append(jobs, job)
		}
	}

	st, _ := newStudio(outputDir)
	rep := progress.NewReporter(os.Stdout, verbose)
	start := time.Now()

	var (
		mu      sync.Mutex
		results []*studio.Result
		failed  int
	)
	swg := sizedwaitgroup.New(max(1, workers))
	for i, job := range jobs {
		if err := swg.AddWithContext(cmd.Context()); err != nil {
			break
		}
		go func() {
			defer swg.Done()
			prefix := fmt.Sprintf("[%d/%d %s]", i+1, len(jobs), style.DisplayName(job.Style))
			res, err := st.Run(cmd.Context(), job, rep.WithPrefix(prefix))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s Error: %v\n", prefix, err)
				return
			}
			results = append(results, res)
		}()
	}
	swg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Workspace.Dir < results[j].Workspace.Dir
	})
	fmt.Println()
	for _, res := range results {
		printResult(res)
	}
	fmt.Printf("Batch: %d rendered, %d failed in %s\n", len(results), failed, formatDuration(time.Since(start)))
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d renders failed", failed, len(jobs))
	}
	return nil
}

func printResult(res *studio.Result) {
	t := res.Track
	length := time.Duration(t.Duration * float64(time.Second))
	fmt.Printf("%s (%s, %.0f bpm, %s %s, seed %d)\n",
		res.Name, t.Style(), t.BPM, humanize.FtoaWithDigits(t.Root, 2)+" Hz", t.Profile.Scale, t.Seed)
	fmt.Printf("  length %s, %s notes, %s drum hits, rendered in %s\n",
		formatDuration(length), humanize.Comma(int64(t.NoteCount())), humanize.Comma(int64(len(t.DrumHits))), formatDuration(res.Elapsed))

	kinds := make([]string, 0, len(res.Files))
	for k := range res.Files {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		size := "?"
		if info, err := os.Stat(res.Files[k]); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Printf("  %-8s %-9s %s\n", k, size, res.Files[k])
	}
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func runStyles(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STYLE\tSCALE\tBPM\tDECAY\tWAVE\tDELAY\tDRUMS")
	for _, name := range style.Names() {
		p := style.Resolve(name)
		fmt.Fprintf(tw, "%s\t%s\t%v\t%.1fs\t%s\t%v\t%s\n",
			p.Name, p.Scale, p.Tempos, p.Decay, p.Waveform, p.Delay, p.Drums)
	}
	return tw.Flush()
}
