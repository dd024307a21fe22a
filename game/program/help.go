package program

// LanguageReference explains the robot programming language to players
const LanguageReference = `There is a robot somewhere on the moon performing tasks and you have been asked to program its every action.

A challenge is a map the robot has to navigate in order to pick up an object, drop it at a specific location, then go to the finishing position.

Each line of a program consists of: <line_number> <instruction> // <comment>
For example: 10 RIGHT
Lines execute in ascending order of their line number, not in the order they are written. Comments are ignored.

Available instructions:
1. UP
2. DOWN
3. LEFT
4. RIGHT
5. PICK_UP
6. DROP
7. GOTO <line_number>
8. GOTO <line_number> IF SENSOR [UP|RIGHT|DOWN|LEFT] IS [WALL|VOID|FLOOR|OBJECT|DROP_ZONE]
9. NOOP

A run is limited to 1000 executed instructions.`
