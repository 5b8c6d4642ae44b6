package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pattern303/p303"
	"github.com/pattern303/p303/cmd"
	"github.com/pattern303/p303/config"
	"github.com/pattern303/p303/oto"
	"github.com/pattern303/p303/player"
	"github.com/pattern303/p303/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the working directory.")
	play := flag.Bool("p", false, "Play the input patterns (default behaviour when no other output is defined).")
	loop := flag.Bool("loop", false, "Play the pattern in a loop until interrupted, instead of rendering it first.")
	rawOut := flag.Bool("r", false, "Output the rendered pattern as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered pattern as .wav file. By default, saves 32-bit integer samples.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	midiOut := flag.Bool("m", false, "Output the pattern as a .mid file.")
	sheetOut := flag.Bool("t", false, "Output the pattern sheet as a .txt file.")
	loops := flag.Int("l", 1, "How many times the pattern is repeated.")
	voicing := flag.String("voicing", "", "Voicing of the synth: "+strings.Join(cmd.Voicings(), " or ")+". By default, the voicing in the config file.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if *loops < 1 {
		fmt.Fprintf(os.Stderr, "the pattern has to be repeated at least once, got -l %d\n", *loops)
		os.Exit(2)
	}
	if !*rawOut && !*wavOut && !*midiOut && !*sheetOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	conf := config.Load()
	synther, err := cmd.Synther(conf, *voicing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	sampleRate := conf.Audio.SampleRate
	var audioContext *oto.Context
	openAudio := func() (p303.AudioContext, error) {
		if audioContext == nil {
			var err error
			audioContext, err = oto.NewContext(sampleRate, conf.Audio.BufferDuration(), conf.Audio.PCM16)
			if err != nil {
				return nil, err
			}
		}
		return audioContext, nil
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			_, name := filepath.Split(filename)
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		pattern, err := p303.ReadPattern(inputBytes)
		if err != nil {
			return err
		}
		synth, err := synther.Synth(sampleRate)
		if err != nil {
			return fmt.Errorf("could not create %v synth: %v", synther.Name(), err)
		}
		if *play && *loop {
			return playLoop(synth, pattern, sampleRate, openAudio)
		}
		buffer, err := player.PlayBlocks(synth, pattern, *loops, sampleRate, conf.Audio.BlockSize)
		if err != nil {
			return fmt.Errorf("player.PlayBlocks failed: %v", err)
		}
		var playWaiter p303.CloserWaiter
		if *play {
			context, err := openAudio()
			if err != nil {
				return fmt.Errorf("could not acquire oto AudioContext: %v", err)
			}
			playWaiter = context.Play(buffer.Source())
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			bitDepth := 32
			if *pcm {
				bitDepth = 16
			}
			ws := &writeSeeker{}
			if err := buffer.WriteWav(ws, sampleRate, bitDepth); err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", ws.buf); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *midiOut {
			var b bytes.Buffer
			if err := p303.WriteMIDI(&b, pattern, *loops); err != nil {
				return fmt.Errorf("could not generate .mid file: %v", err)
			}
			if err := output(".mid", b.Bytes()); err != nil {
				return fmt.Errorf("error outputting .mid file: %v", err)
			}
		}
		if *sheetOut {
			sheet, err := p303.Sheet(pattern)
			if err != nil {
				return fmt.Errorf("could not generate pattern sheet: %v", err)
			}
			if err := output(".txt", []byte(sheet)); err != nil {
				return fmt.Errorf("error outputting .txt file: %v", err)
			}
		}
		if playWaiter != nil {
			return playWaiter.Wait()
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

// playLoop plays the pattern live until the user interrupts, printing the
// steps as they are played.
func playLoop(synth p303.Synth, pattern p303.Pattern, sampleRate int, open func() (p303.AudioContext, error)) error {
	engine, err := player.NewEngine(synth, pattern, sampleRate, open)
	if err != nil {
		return err
	}
	defer engine.Close()
	if err := engine.Start(); err != nil {
		return err
	}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	fmt.Fprintf(os.Stderr, "playing %q at %v BPM, press Ctrl+C to stop\n", pattern.Name, pattern.Tempo)
	for {
		select {
		case msg := <-engine.Messages():
			if msg.HasStep && msg.Step >= 0 {
				fmt.Fprintf(os.Stderr, "\r%2d %-6s", msg.Step+1, pattern.Steps[msg.Step].String())
			}
		case <-interrupt:
			fmt.Fprintln(os.Stderr)
			return engine.HardStop()
		}
	}
}

// writeSeeker is an in-memory io.WriteSeeker for the wav encoder.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(w.pos) + offset
	case io.SeekEnd:
		pos = int64(len(w.buf)) + offset
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	w.pos = int(pos)
	return pos, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "p303 command line utility for playing and exporting .yml/.json pattern files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
